package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewExportCmd создаёт группу команд для PDF-экспортов.
func NewExportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Manage PDF exports",
	}

	cmd.AddCommand(
		newExportStartCmd(clientFn, outputFn),
	)

	return cmd
}

func newExportStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var userID int64
	var fileName string
	var params []string

	cmd := &cobra.Command{
		Use:   "start EXPORT_TYPE",
		Short: "Enqueue a PDF export (USER_PDF, PRODUCT_PDF, ORDER_PDF, PAYMENT_PDF)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := EnqueueExportRequest{
				ExportType: args[0],
				UserID:     userID,
				FileName:   fileName,
			}

			if len(params) > 0 {
				req.Parameters = make(map[string]string)
				for _, kv := range params {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid parameter format %q, expected KEY=VALUE", kv)
					}
					req.Parameters[parts[0]] = parts[1]
				}
			}

			resp, err := client.EnqueueExport(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Export enqueued: %s", resp.TaskID))
			out.Print(
				[]string{"TASK_ID", "FILE_NAME"},
				[][]string{{resp.TaskID, resp.FileName}},
				resp,
			)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User requesting the export")
	cmd.Flags().StringVar(&fileName, "file-name", "", "Output file name (generated if not specified)")
	cmd.Flags().StringSliceVar(&params, "param", nil, "Dataset filters as KEY=VALUE (repeatable)")

	return cmd
}
