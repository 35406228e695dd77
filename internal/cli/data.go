package cli

import (
	"fmt"
	"io"
	"os"

	"forklift-training-service/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewExportCmd writes questions or scores as CSV.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export [questions|scores]",
		Short:     "Export questions or scores as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"questions", "scores"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, *configPath, func(admin *app.AdminService, _ *zap.Logger) error {
				export := admin.ExportScores
				if args[0] == "questions" {
					export = admin.ExportQuestions
				}
				if out == "" || out == "-" {
					return export(cmd.Context(), cmd.OutOrStdout())
				}
				return writeFile(out, func(w io.Writer) error {
					return export(cmd.Context(), w)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// writeFile creates path and hands it to fn, reporting write and close failures.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fn(f)
}

// NewImportCmd appends questions from a CSV file.
func NewImportCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "questions FILE",
		Short: "Append questions from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, *configPath, func(admin *app.AdminService, log *zap.Logger) error {
				var r io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					r = f
				}
				added, err := admin.ImportQuestions(cmd.Context(), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions\n", len(added))
				return nil
			})
		},
	})
	return cmd
}

// withAdmin builds the stores, seeds empty collections and runs fn.
func withAdmin(cmd *cobra.Command, configPath string, fn func(*app.AdminService, *zap.Logger) error) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	st, err := buildStores(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := buildServices(st, log)
	if err := app.Seed(cmd.Context(), st.users, st.questions, svc.auth, log); err != nil {
		return err
	}
	return fn(svc.admin, log)
}
