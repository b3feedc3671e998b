package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nirvista/leadcapture/internal/formclient"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		values formclient.Values
		apiURL string
	)

	cmd := &cobra.Command{
		Use:           "leadform",
		Short:         "Register for the list from the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := formclient.NewForm(formclient.NewClient(apiURL, nil))
			return runForm(cmd.Context(), form, values, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	defaultURL := strings.TrimSpace(os.Getenv("LEAD_API_URL"))
	if defaultURL == "" {
		defaultURL = formclient.DefaultEndpoint
	}

	cmd.Flags().StringVar(&values.Name, "name", "", "full name")
	cmd.Flags().StringVar(&values.Email, "email", "", "work email")
	cmd.Flags().StringVar(&values.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&apiURL, "api-url", defaultURL, "lead API endpoint (env LEAD_API_URL)")
	return cmd
}

type prompt struct {
	field string
	label string
	value string
}

// runForm fills the form from flags, prompts for whatever is still empty,
// then submits once.
func runForm(ctx context.Context, form *formclient.Form, initial formclient.Values, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	prompts := []prompt{
		{field: formclient.FieldName, label: "Full Name", value: initial.Name},
		{field: formclient.FieldEmail, label: "Work Email", value: initial.Email},
		{field: formclient.FieldPhone, label: "Phone Number", value: initial.Phone},
	}

	for _, p := range prompts {
		value := strings.TrimSpace(p.value)
		for value == "" {
			fmt.Fprintf(out, "%s: ", p.label)
			line, err := reader.ReadString('\n')
			value = strings.TrimSpace(line)
			if err != nil {
				if value != "" {
					break
				}
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("%s is required", strings.ToLower(p.label))
				}
				return err
			}
		}
		form.Set(p.field, value)
	}

	fmt.Fprintln(out, "Processing...")
	if _, err := form.Submit(ctx); err != nil {
		msg := form.Status().Error
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(out, msg)
		return err
	}

	fmt.Fprintln(out, "You're In!")
	fmt.Fprintln(out, "Thanks for joining our exclusive list.")
	return nil
}
