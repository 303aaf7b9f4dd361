package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ss12000-mock/pkg/cli/client"
)

// expandFlags are the expansion options shared by list, get and lookup.
type expandFlags struct {
	expand []string
	names  bool
}

func (f *expandFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.expand, "expand", nil, "Relation to embed (repeatable)")
	fs.BoolVar(&f.names, "names", false, "Add display names of referenced records")
}

func (f *expandFlags) apply(q url.Values) {
	for _, e := range f.expand {
		q.Add("expand", e)
	}
	if f.names {
		q.Set("expandReferenceNames", "true")
	}
}

// parseParams turns repeated k=v flags into query parameters.
func parseParams(params []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range params {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		q.Add(strings.TrimSpace(k), v)
	}
	return q, nil
}

func newListCmd(c *client.Client) *cobra.Command {
	var (
		params    []string
		sortKey   string
		limit     int
		offset    int
		pageToken string
		all       bool
		ex        expandFlags
	)

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List records of a resource",
		Example: `  ss12000 list persons --param nameContains=anna --sortkey DisplayNameAsc
  ss12000 list duties --param organisation=<id> --expand person --names
  ss12000 list organisations --page-token <token>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseParams(params)
			if err != nil {
				return err
			}
			if sortKey != "" {
				q.Set("sortkey", sortKey)
			}
			if cmd.Flags().Changed("limit") {
				q.Set("limit", strconv.Itoa(limit))
			}
			if cmd.Flags().Changed("offset") {
				q.Set("offset", strconv.Itoa(offset))
			}
			if pageToken != "" {
				q.Set("pageToken", pageToken)
			}
			ex.apply(q)

			path := "/" + args[0]
			if all {
				items, err := client.FetchAllPages(cmd.Context(), c, path, q)
				if err != nil {
					return err
				}
				return printItems(cmd, cmd.OutOrStdout(), items, map[string]any{"data": items})
			}

			var page client.ListResponse
			if err := c.DoJSON(cmd.Context(), http.MethodGet, path, q, nil, &page); err != nil {
				return err
			}
			if err := printItems(cmd, cmd.OutOrStdout(), page.Data, page); err != nil {
				return err
			}
			if getOutputFormat(cmd) != "json" && page.PageToken != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "next page: --page-token %s\n", page.PageToken)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "Filter parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&sortKey, "sortkey", "", "Sort key, e.g. DisplayNameAsc")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of records to skip")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Continue from a previous page")
	cmd.Flags().BoolVar(&all, "all", false, "Follow page tokens until the last page")
	ex.register(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("page-token", "param")
	cmd.MarkFlagsMutuallyExclusive("page-token", "sortkey")
	cmd.MarkFlagsMutuallyExclusive("page-token", "offset")
	return cmd
}

func newGetCmd(c *client.Client) *cobra.Command {
	var ex expandFlags

	cmd := &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			ex.apply(q)
			var rec map[string]any
			if err := c.DoJSON(cmd.Context(), http.MethodGet, "/"+args[0]+"/"+url.PathEscape(args[1]), q, nil, &rec); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return client.PrintJSON(cmd.OutOrStdout(), rec)
			}
			client.PrintDetail(cmd.OutOrStdout(), rec)
			return nil
		},
	}
	ex.register(cmd.Flags())
	return cmd
}

func newLookupCmd(c *client.Client) *cobra.Command {
	var ex expandFlags

	cmd := &cobra.Command{
		Use:   "lookup <resource> <id>...",
		Short: "Fetch several records by id",
		Long:  "Fetch several records by id. For persons the ids may also be civic numbers.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			ex.apply(q)
			var resp struct {
				Data []map[string]any `json:"data"`
			}
			body := map[string][]string{"ids": args[1:]}
			if err := c.DoJSON(cmd.Context(), http.MethodPost, "/"+args[0]+"/lookup", q, body, &resp); err != nil {
				return err
			}
			return printItems(cmd, cmd.OutOrStdout(), resp.Data, resp)
		},
	}
	ex.register(cmd.Flags())
	return cmd
}

func newStatisticsCmd(c *client.Client) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "statistics",
		Short: "Show the record count of every resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := parseParams(params)
			if err != nil {
				return err
			}
			var counts map[string]any
			if err := c.DoJSON(cmd.Context(), http.MethodGet, "/statistics", q, nil, &counts); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return client.PrintJSON(cmd.OutOrStdout(), counts)
			}
			client.PrintDetail(cmd.OutOrStdout(), counts)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "Meta filter as key=value, e.g. meta.modified.after=2024-01-01T00:00:00Z")
	return cmd
}
