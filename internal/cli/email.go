package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewEmailCmd создаёт группу команд для отправки писем.
func NewEmailCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Enqueue emails",
	}

	cmd.AddCommand(
		newEmailSendCmd(clientFn, outputFn),
	)

	return cmd
}

func newEmailSendCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var emailType string
	var subject string
	var content string
	var templateName string
	var variables []string

	cmd := &cobra.Command{
		Use:   "send RECIPIENT...",
		Short: "Enqueue an email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := EnqueueEmailRequest{
				EmailType:    emailType,
				To:           args,
				Subject:      subject,
				Content:      content,
				TemplateName: templateName,
			}

			if len(variables) > 0 {
				req.Variables = make(map[string]any)
				for _, kv := range variables {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid variable format %q, expected KEY=VALUE", kv)
					}
					req.Variables[parts[0]] = parts[1]
				}
			}

			resp, err := client.EnqueueEmail(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Email enqueued: %s", resp.TaskID))
			out.Print(
				[]string{"TASK_ID"},
				[][]string{{resp.TaskID}},
				resp,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&emailType, "type", "SIMPLE", "Email type (SIMPLE, TEMPLATE, OTP, ...)")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&content, "content", "", "Plain-text body (SIMPLE emails)")
	cmd.Flags().StringVar(&templateName, "template", "", "Template name (TEMPLATE emails)")
	cmd.Flags().StringSliceVar(&variables, "var", nil, "Template variables as KEY=VALUE (repeatable)")
	cmd.MarkFlagRequired("subject")

	return cmd
}
