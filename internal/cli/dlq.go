package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDLQCmd создаёт группу команд для dead-letter очереди.
func NewDLQCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and replay the dead-letter queue",
	}

	cmd.AddCommand(
		newDLQListCmd(clientFn, outputFn),
		newDLQReplayCmd(clientFn, outputFn),
	)

	return cmd
}

func newDLQListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dead-lettered messages without removing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			entries, err := client.ListDLQ(limit)
			if err != nil {
				return err
			}

			headers := []string{"MESSAGE_ID", "EXCHANGE", "ROUTING_KEY", "REASON"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.MessageID, e.Exchange, e.RoutingKey, e.Reason}
			}

			out.Print(headers, rows, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of messages to show")

	return cmd
}

func newDLQReplayCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Republish dead-lettered messages to their original queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.ReplayDLQ(limit)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Replayed %d message(s)", resp.Replayed))
			out.Print(
				[]string{"REPLAYED"},
				[][]string{{fmt.Sprintf("%d", resp.Replayed)}},
				resp,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of messages to replay")

	return cmd
}
