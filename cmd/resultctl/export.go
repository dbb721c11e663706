package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"face-insight-api/domain/dto"
	"face-insight-api/domain/services"
)

// exportParams are the query parameters of GET /result/csv, exposed as
// kebab-case flags.
var exportParams = []struct {
	name  string
	usage string
}{
	{services.ParamStart, "earliest epoch second (inclusive)"},
	{services.ParamEnd, "latest epoch second (inclusive)"},
	{services.ParamRace, "race substring"},
	{services.ParamGender, "gender substring"},
	{services.ParamMinAge, "lower bound on min_age"},
	{services.ParamMaxAge, "upper bound on max_age"},
	{services.ParamBranch, "branch id bound"},
	{services.ParamCamera, "camera id bound"},
	{services.ParamMinGenderConfidence, "gender confidence lower bound"},
	{services.ParamMaxGenderConfidence, "confidence bound, see API docs"},
	{services.ParamMinAgeConfidence, "confidence bound, see API docs"},
	{services.ParamMaxAgeConfidence, "confidence bound, see API docs"},
	{services.ParamMinRaceConfidence, "race confidence lower bound"},
	{services.ParamMaxRaceConfidence, "confidence bound, see API docs"},
}

var exportOut string

const exportExample = `  resultctl export --start 1700000000 --end 1700086400 --out day.csv
  resultctl export --race asian --min-age 20`

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export filtered detection results as CSV",
	Example: exportExample,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		export, err := container.ResultService.ExportCSV(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if export.Empty {
			fmt.Fprintln(cmd.ErrOrStderr(), "No matching results (or no filters given).")
			return nil
		}

		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(export.Content)
			return err
		}

		if err := os.WriteFile(exportOut, export.Content, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", export.Rows, exportOut)
		return nil
	},
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func addFilterFlags(cmd *cobra.Command) {
	for _, p := range exportParams {
		cmd.Flags().String(flagName(p.name), "", p.usage)
	}
}

func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}

// filterFromFlags parses the flags with the same rules as the HTTP query.
func filterFromFlags(cmd *cobra.Command) (dto.ExportFilter, error) {
	return services.ParseExportFilter(func(key string) string {
		v, err := cmd.Flags().GetString(flagName(key))
		if err != nil {
			return ""
		}
		return v
	})
}
