package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securechat/internal/filex"
)

func (a *App) sendCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "send <recipient> [message...]",
		Short: "Encrypt and send a message",
		Long:  "Encrypt a message for the recipient's public key and send it. Without a message argument the text is read from input.",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			if text == "" {
				var err error
				text, err = GetMultiline(a.in, "Message:", a.out)
				if err != nil {
					return err
				}
			}
			if text == "" {
				return fmt.Errorf("empty message")
			}

			var attachment []byte
			if file != "" {
				var err error
				attachment, err = filex.ReadLimited(file, maxAttachmentBytes)
				if err != nil {
					return err
				}
			}

			m, err := a.chat.Send(cmd.Context(), args[0], text, attachment)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Sent message %d to %s.\n", m.ID, m.RecipientUsername)
			return nil
		}),
	}
	cmd.Flags().StringVar(&file, "file", "", "attach a file (encrypted for the recipient)")
	return cmd
}

func (a *App) inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "Fetch and decrypt received messages",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			msgs, err := a.chat.Inbox(cmd.Context())
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Fprintln(a.out, "No messages.")
				return nil
			}
			for _, m := range msgs {
				ts := m.Timestamp.Local().Format(time.DateTime)
				clip := ""
				if m.HasAttachment {
					clip = " [attachment]"
				}
				if m.Err != nil {
					fmt.Fprintf(a.out, "#%d %s %s%s: <cannot decrypt: %v>\n", m.ID, ts, m.From, clip, m.Err)
					continue
				}
				fmt.Fprintf(a.out, "#%d %s %s%s: %s\n", m.ID, ts, m.From, clip, m.Text)
			}
			return nil
		}),
	}
}

func (a *App) attachmentCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "attachment <message-id>",
		Short: "Download and decrypt the attachment of a message",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("message id must be an integer: %w", err)
			}

			data, err := a.chat.Attachment(cmd.Context(), id)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("attachment-%d.bin", id)
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %d bytes to %s.\n", len(data), output)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file")
	return cmd
}
