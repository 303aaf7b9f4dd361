package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"ss12000-mock/pkg/cli/client"
)

func newSubscriptionsCmd(c *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage change subscriptions",
	}
	cmd.AddCommand(newSubscriptionsCreateCmd(c))
	cmd.AddCommand(newSubscriptionsUpdateCmd(c))
	cmd.AddCommand(newSubscriptionsDeleteCmd(c))
	return cmd
}

// subscriptionFlags holds the writable subscription fields.
type subscriptionFlags struct {
	resourceType string
	resourceID   string
	userID       string
	expires      string
}

func (f *subscriptionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.resourceType, "resource-type", "", "Resource path, e.g. persons")
	cmd.Flags().StringVar(&f.resourceID, "resource-id", "", "Subscribed record id")
	cmd.Flags().StringVar(&f.userID, "user-id", "", "Subscriber id")
	cmd.Flags().StringVar(&f.expires, "expires", "", "Expiry time (RFC 3339)")
}

// body returns the fields whose flags were set.
func (f *subscriptionFlags) body(cmd *cobra.Command) (map[string]any, error) {
	body := map[string]any{}
	set := func(flag, key, v string) {
		if cmd.Flags().Changed(flag) {
			body[key] = v
		}
	}
	set("resource-type", "resource_type", f.resourceType)
	set("resource-id", "resource_id", f.resourceID)
	set("user-id", "user_id", f.userID)
	if cmd.Flags().Changed("expires") {
		t, err := time.Parse(time.RFC3339, f.expires)
		if err != nil {
			return nil, fmt.Errorf("invalid --expires %q: expected RFC 3339", f.expires)
		}
		body["expires"] = t
	}
	return body, nil
}

func printRecord(cmd *cobra.Command, rec map[string]any) error {
	if getOutputFormat(cmd) == "json" {
		return client.PrintJSON(cmd.OutOrStdout(), rec)
	}
	client.PrintDetail(cmd.OutOrStdout(), rec)
	return nil
}

func newSubscriptionsCreateCmd(c *client.Client) *cobra.Command {
	var f subscriptionFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := f.body(cmd)
			if err != nil {
				return err
			}
			var rec map[string]any
			if err := c.DoJSON(cmd.Context(), http.MethodPost, "/subscriptions", nil, body, &rec); err != nil {
				return err
			}
			return printRecord(cmd, rec)
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("resource-type")
	_ = cmd.MarkFlagRequired("resource-id")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func newSubscriptionsUpdateCmd(c *client.Client) *cobra.Command {
	var f subscriptionFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := f.body(cmd)
			if err != nil {
				return err
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update: set at least one of --resource-type, --resource-id, --user-id, --expires")
			}
			var rec map[string]any
			if err := c.DoJSON(cmd.Context(), http.MethodPatch, "/subscriptions/"+url.PathEscape(args[0]), nil, body, &rec); err != nil {
				return err
			}
			return printRecord(cmd, rec)
		},
	}
	f.register(cmd)
	return cmd
}

func newSubscriptionsDeleteCmd(c *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.DoJSON(cmd.Context(), http.MethodDelete, "/subscriptions/"+url.PathEscape(args[0]), nil, nil, nil); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return client.PrintJSON(cmd.OutOrStdout(), map[string]string{"status": "deleted", "id": args[0]})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Subscription %s deleted\n", args[0])
			return nil
		},
	}
}
