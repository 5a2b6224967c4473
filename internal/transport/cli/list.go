package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

var listColumns = map[domain.ResourceKind][]string{
	domain.ResourceUsers:       {"id", "full_name", "email", "user_type", "status"},
	domain.ResourceKYC:         {"id", "user_name", "kyc_level", "status", "submitted_at"},
	domain.ResourceServices:    {"id", "title", "category", "status", "requested_by"},
	domain.ResourceMentorship:  {"id", "name", "industry", "status", "active_mentees"},
	domain.ResourceInvestments: {"id", "startup_name", "stage", "status", "amount_sought"},
}

func kindNames() []string {
	out := make([]string, 0, len(domain.ResourceKinds))
	for _, kind := range domain.ResourceKinds {
		out = append(out, string(kind))
	}
	return out
}

func parseKind(value string) (domain.ResourceKind, error) {
	kind, ok := domain.ParseResourceKind(value)
	if !ok {
		return "", fmt.Errorf("unknown resource %q; expected one of %s", value, strings.Join(kindNames(), ", "))
	}
	return kind, nil
}

// parseAssignments reads repeated key=value flags.
func parseAssignments(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", raw)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

func newListCommand(env *commandEnv) *cobra.Command {
	var (
		search   string
		status   string
		filters  []string
		page     int
		pageSize int
		output   string
	)

	cmd := &cobra.Command{
		Use:       "list <kind>",
		Short:     "List a resource collection",
		Long:      "List users, kyc, services, mentorship or investments with optional search, status and field filters.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			secondary, err := parseAssignments(filters)
			if err != nil {
				return err
			}
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output %q", output)
			}

			ctx := cmd.Context()
			rt, err := env.connectSignedIn(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := describeDecision(rt.Console.Gate.EvaluateResource(kind), string(kind)); err != nil {
				return err
			}
			ctrl, _ := rt.Console.Controller(kind)

			var gen uint64
			set := func(field, value string) error {
				g, err := ctrl.SetFilter(ctx, field, value)
				if err != nil {
					return userError(err)
				}
				gen = g
				return nil
			}
			if cmd.Flags().Changed("search") {
				if err := set(domain.FilterSearch, search); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("status") {
				if err := set(domain.FilterStatus, status); err != nil {
					return err
				}
			}
			if pageSize > 0 {
				if err := set(domain.FilterPageSize, fmt.Sprint(pageSize)); err != nil {
					return err
				}
			}
			for field, value := range secondary {
				if err := set(field, value); err != nil {
					return err
				}
			}
			if gen == 0 {
				gen = ctrl.Refetch(ctx)
			}
			if err := ctrl.Await(ctx, gen); err != nil {
				return err
			}
			if page > 1 {
				if err := ctrl.Await(ctx, ctrl.SetPage(ctx, page)); err != nil {
					return err
				}
			}

			view := ctrl.View()
			if view.Error != "" {
				return errors.New(view.Error)
			}
			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return renderTable(cmd.OutOrStdout(), kind, view)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "free text search")
	cmd.Flags().StringVar(&status, "status", "", "status filter; 'all' clears it")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "additional field filter as key=value, repeatable")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "items per page")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

func renderTable(out io.Writer, kind domain.ResourceKind, view usecase.QueryView) error {
	raw, err := json.Marshal(view.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}

	columns := listColumns[kind]
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, column := range columns {
			if v, ok := row[column]; ok && v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	totalPages := view.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	_, err = fmt.Fprintf(out, "Page %d of %d\n", view.Query.Page, totalPages)
	return err
}

func newActCommand(env *commandEnv) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "act <kind> <id> <action>",
		Short: "Apply an action such as kyc.approve to one item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			fields, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			patch := make(map[string]any, len(fields))
			for k, v := range fields {
				patch[k] = v
			}

			ctx := cmd.Context()
			rt, err := env.connectSignedIn(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.Console.Mutate(ctx, kind, args[1], args[2], patch); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s applied to %s %s\n", args[2], kind, args[1])
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field to change as key=value, repeatable")
	return cmd
}
