package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/mwantia/mugenvault/pkg/db/store"
	"github.com/mwantia/mugenvault/pkg/rules"
	"github.com/spf13/cobra"
)

func NewCollectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage smart collections",
		Long:    "Create, inspect and evaluate smart collections whose members are computed from filter rules.",
	}

	cmd.AddCommand(NewCollectionListCommand())
	cmd.AddCommand(NewCollectionCreateCommand())
	cmd.AddCommand(NewCollectionRemoveCommand())
	cmd.AddCommand(NewCollectionShowCommand())
	cmd.AddCommand(NewCollectionEvalCommand())
	cmd.AddCommand(NewCollectionPreviewCommand())
	cmd.AddCommand(NewCollectionRefreshCommand())
	cmd.AddCommand(NewCollectionRuleCommand())

	return cmd
}

func NewCollectionListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List smart collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			collections, err := sess.store.ListCollections(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRULES\tCHARACTERS\tSTAGES\tREFRESHED")
			for _, c := range collections {
				characters, stages, refreshed := "-", "-", "never"

				state, err := sess.store.GetRefreshState(cmd.Context(), c.ID)
				switch {
				case err == nil:
					characters = strconv.Itoa(state.CharacterCount)
					stages = strconv.Itoa(state.StageCount)
					refreshed = formatDate(state.RefreshedAt)
					if state.LastError != "" {
						refreshed = "failed"
					}
				case !errors.Is(err, store.ErrNotFound):
					return err
				}

				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", c.ID, c.Name, len(c.Rules), characters, stages, refreshed)
			}
			return w.Flush()
		},
	}

	return cmd
}

func NewCollectionCreateCommand() *cobra.Command {
	var description string
	var ruleTexts []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a smart collection",
		Long: `Create a smart collection.

Rules are given as '<field> <comparison> [value]', e.g.
  mugenvault collection create "Capcom HD" --rule "tag contains capcom" --rule "isHD equals true"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			query, err := buildQuery(sess, ruleTexts)
			if err != nil {
				return err
			}

			collection := &models.Collection{
				Name:        args[0],
				Description: description,
				Rules:       models.NewCollectionRules(0, query),
			}
			if err := sess.store.CreateCollection(cmd.Context(), collection); err != nil {
				return fmt.Errorf("failed to create collection '%s': %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created collection '%s' (%d) with %d rules\n", collection.Name, collection.ID, len(query))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the collection")
	cmd.Flags().StringArrayVarP(&ruleTexts, "rule", "r", nil, "filter rule as '<field> <comparison> [value]', may be repeated")

	return cmd
}

func NewCollectionRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <collection>",
		Short: "Remove a smart collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			collection, err := sess.resolveCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := sess.store.DeleteCollection(cmd.Context(), collection.ID); err != nil {
				return fmt.Errorf("failed to remove collection '%s': %w", collection.Name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed collection '%s'\n", collection.Name)
			return nil
		},
	}

	return cmd
}

func NewCollectionShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <collection>",
		Short: "Show the rules of a smart collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			collection, err := sess.resolveCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", collection.Name)
			fmt.Fprintf(out, "Description: %s\n", collection.Description)
			fmt.Fprintf(out, "Updated:     %s\n\n", formatDate(collection.UpdatedAt))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tRULE")
			for i, row := range collection.Rules {
				fmt.Fprintf(w, "%d\t%s\t%s %s %q\n", i+1, row.ID, row.Field, row.Comparison, row.Value)
			}
			return w.Flush()
		},
	}

	return cmd
}

func NewCollectionEvalCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "eval <collection>",
		Short: "Evaluate a smart collection",
		Long:  "Computes the characters and stages currently matching every rule of the collection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			collection, err := sess.resolveCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			evaluation, err := sess.collections.Evaluate(cmd.Context(), collection.ID)
			if err != nil {
				return err
			}

			return printResult(cmd, evaluation.Result, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as json")

	return cmd
}

func NewCollectionPreviewCommand() *cobra.Command {
	var asJSON bool
	var ruleTexts []string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Evaluate rules without saving them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			query, err := buildQuery(sess, ruleTexts)
			if err != nil {
				return err
			}

			result, err := sess.collections.Preview(cmd.Context(), query)
			if err != nil {
				return err
			}

			return printResult(cmd, result, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as json")
	cmd.Flags().StringArrayVarP(&ruleTexts, "rule", "r", nil, "filter rule as '<field> <comparison> [value]', may be repeated")

	return cmd
}

func NewCollectionRefreshCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-evaluate every smart collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			evaluations, err := sess.collections.RefreshAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCHARACTERS\tSTAGES\tSTATUS")
			for _, e := range evaluations {
				status := "ok"
				if e.Err != nil {
					status = e.Err.Error()
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", e.CollectionID, e.Name, len(e.Result.CharacterIDs), len(e.Result.StageIDs), status)
			}
			return w.Flush()
		},
	}

	return cmd
}

func NewCollectionRuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage the rules of a smart collection",
	}

	cmd.AddCommand(NewCollectionRuleAddCommand())
	cmd.AddCommand(NewCollectionRuleEditCommand())
	cmd.AddCommand(NewCollectionRuleRemoveCommand())

	return cmd
}

func NewCollectionRuleAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <collection> <rule>",
		Short: "Append a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateRules(cmd.Context(), args[0], func(sess *session, rows []models.CollectionRule) ([]models.CollectionRule, error) {
				rule, err := buildRule(sess, args[1])
				if err != nil {
					return nil, err
				}
				return append(rows, models.NewCollectionRules(0, rules.Query{rule})...), nil
			})
		},
	}

	return cmd
}

func NewCollectionRuleEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <collection> <rule-id|position> <rule>",
		Short: "Replace a rule, keeping its identity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateRules(cmd.Context(), args[0], func(_ *session, rows []models.CollectionRule) ([]models.CollectionRule, error) {
				return editRule(rows, args[1], args[2])
			})
		},
	}

	return cmd
}

func NewCollectionRuleRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <collection> <rule-id|position>",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateRules(cmd.Context(), args[0], func(_ *session, rows []models.CollectionRule) ([]models.CollectionRule, error) {
				return removeRule(rows, args[1])
			})
		},
	}

	return cmd
}

// updateRules works on the persisted rows rather than a validated query, so
// a rule that no longer validates can still be edited or removed.
func updateRules(ctx context.Context, ref string, update func(*session, []models.CollectionRule) ([]models.CollectionRule, error)) error {
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	collection, err := sess.resolveCollection(ctx, ref)
	if err != nil {
		return err
	}

	rows, err := update(sess, collection.Rules)
	if err != nil {
		return err
	}

	updated := models.Collection{ID: collection.ID, Rules: rows}
	if query, err := updated.Query(); err == nil {
		return sess.collections.SaveRules(ctx, collection.ID, query)
	}

	sess.log.Warn("Collection '%s' still holds invalid rules, saving them unchanged", collection.Name)
	if err := sess.store.ReplaceRules(ctx, collection.ID, rows); err != nil {
		return fmt.Errorf("failed to save rules of collection '%s': %w", collection.Name, err)
	}
	return nil
}

// findRule accepts a rule id or a 1-based position.
func findRule(rows []models.CollectionRule, ref string) (int, error) {
	for i, row := range rows {
		if row.ID == ref {
			return i, nil
		}
	}

	if position, err := strconv.Atoi(ref); err == nil && position >= 1 && position <= len(rows) {
		return position - 1, nil
	}
	return 0, fmt.Errorf("rule '%s' does not exist", ref)
}

func removeRule(rows []models.CollectionRule, ref string) ([]models.CollectionRule, error) {
	index, err := findRule(rows, ref)
	if err != nil {
		return nil, err
	}

	remaining := make([]models.CollectionRule, 0, len(rows)-1)
	remaining = append(remaining, rows[:index]...)
	return append(remaining, rows[index+1:]...), nil
}

// editRule validates text as the replacement of the referenced rule. The
// previous row does not have to be valid itself.
func editRule(rows []models.CollectionRule, ref, text string) ([]models.CollectionRule, error) {
	index, err := findRule(rows, ref)
	if err != nil {
		return nil, err
	}

	field, comparison, value, err := parseRule(text)
	if err != nil {
		return nil, err
	}

	f, err := rules.ParseField(field)
	if err != nil {
		return nil, err
	}
	c, err := rules.ParseComparison(comparison)
	if err != nil {
		return nil, err
	}

	row := rows[index]

	var rule rules.FilterRule
	if previous, restoreErr := rules.RestoreRule(row.ID, rules.FilterField(row.Field), rules.ComparisonOperator(row.Comparison), row.Value); restoreErr == nil {
		rule, err = previous.Edit(f, c, value)
	} else {
		rule, err = rules.RestoreRule(row.ID, f, c, value)
	}
	if err != nil {
		return nil, err
	}

	edited := make([]models.CollectionRule, len(rows))
	copy(edited, rows)
	edited[index] = models.NewCollectionRules(row.CollectionID, rules.Query{rule})[0]
	return edited, nil
}

func buildRule(sess *session, text string) (rules.FilterRule, error) {
	field, comparison, value, err := parseRule(text)
	if err != nil {
		return rules.FilterRule{}, err
	}
	return sess.collections.BuildRule(field, comparison, value)
}

func buildQuery(sess *session, texts []string) (rules.Query, error) {
	query := make(rules.Query, 0, len(texts))
	for _, text := range texts {
		rule, err := buildRule(sess, text)
		if err != nil {
			return nil, fmt.Errorf("invalid rule '%s': %w", text, err)
		}
		query = append(query, rule)
	}
	return query, nil
}

func printResult(cmd *cobra.Command, result rules.Result, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tID")
	for _, id := range result.CharacterIDs {
		fmt.Fprintf(w, "character\t%s\n", id)
	}
	for _, id := range result.StageIDs {
		fmt.Fprintf(w, "stage\t%s\n", id)
	}
	return w.Flush()
}
