package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"face-insight-api/domain/dto"
	"face-insight-api/infrastructure/imaging"
)

var latestOpts struct {
	photoOut     string
	includePhoto bool
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent detection result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := container.ResultService.GetLatestResult(cmd.Context())
		if err != nil {
			return err
		}

		if latestOpts.photoOut != "" {
			if err := writePhoto(latestOpts.photoOut, result.PhotoDataURI); err != nil {
				return err
			}
		}

		return printLatest(cmd.OutOrStdout(), result, latestOpts.includePhoto)
	},
}

func init() {
	latestCmd.Flags().StringVar(&latestOpts.photoOut, "photo-out", "", "write the annotated JPEG to this file")
	latestCmd.Flags().BoolVar(&latestOpts.includePhoto, "include-photo", false, "keep photo_data_uri in the printed JSON")
	rootCmd.AddCommand(latestCmd)
}

func printLatest(w io.Writer, result *dto.LatestResultResponse, includePhoto bool) error {
	out := *result
	if !includePhoto {
		out.PhotoDataURI = ""
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writePhoto decodes a JPEG data URI into path.
func writePhoto(path, dataURI string) error {
	encoded, ok := strings.CutPrefix(dataURI, imaging.DataURIPrefix)
	if !ok {
		return fmt.Errorf("unexpected photo encoding")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode photo: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
