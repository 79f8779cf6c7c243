package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/sweepr/internal/catalog"
	"github.com/vmunix/sweepr/internal/getter"
	"github.com/vmunix/sweepr/internal/plex"
)

var (
	evalProperties     []string
	evalDataType       string
	evalRuleName       string
	evalCollectionName string
)

var evalCmd = &cobra.Command{
	Use:   "eval <ratingKey>",
	Short: "Evaluate properties of a library item",
	Long: `Evaluate rule properties of one library item.

Properties are given by name or id with -p (repeatable). Without -p every
property is evaluated. Collection properties need a rule: pass --rule-name, and
--collection-name when the rule manages a collection under another name.`,
	Example: `  sweepr eval 12345 -p addDate -p seenBy
  sweepr eval 12345 -p collections --rule-name "Leaving Soon"
  sweepr eval 678 --data-type show --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringArrayVarP(&evalProperties, "property", "p", nil, "Property name or id (repeatable)")
	evalCmd.Flags().StringVar(&evalDataType, "data-type", "", "Library data type (movie, show, season, episode or 1-4)")
	evalCmd.Flags().StringVar(&evalRuleName, "rule-name", "", "Name of the rule the evaluation runs for")
	evalCmd.Flags().StringVar(&evalCollectionName, "collection-name", "", "Collection the rule manages, when not named after it")
}

// evalResult is one evaluated property.
type evalResult struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	Result getter.Value `json:"result"`
}

func runEval(cmd *cobra.Command, args []string) error {
	ratingKey := strings.TrimSpace(args[0])
	if ratingKey == "" {
		return errors.New("rating key must not be empty")
	}

	dataType, err := parseDataType(evalDataType)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	props, err := resolveProperties(a.catalog, a.appID, evalProperties)
	if err != nil {
		return err
	}

	rule := ruleContext(evalRuleName, evalCollectionName)
	ids := make([]int, len(props))
	for i, p := range props {
		ids[i] = p.ID
	}
	values := a.evaluator.EvaluateMany(cmd.Context(), ids, plex.MediaItem{RatingKey: ratingKey}, dataType, rule)

	results := make([]evalResult, len(props))
	for i, p := range props {
		results[i] = evalResult{ID: p.ID, Name: p.Name, Result: values[p.ID]}
	}

	if jsonOutput {
		return printJSON(results)
	}
	printEvalHuman(ratingKey, results)
	return nil
}

// resolveProperties maps -p arguments to descriptors, in argument order and
// without duplicates. No arguments selects every property.
func resolveProperties(cat *catalog.Catalog, app catalog.ApplicationID, args []string) ([]catalog.Descriptor, error) {
	if len(args) == 0 {
		return cat.Properties(app), nil
	}

	var out []catalog.Descriptor
	for _, arg := range args {
		d, err := resolveProperty(cat, app, strings.TrimSpace(arg))
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(out, func(x catalog.Descriptor) bool { return x.ID == d.ID }) {
			out = append(out, d)
		}
	}
	return out, nil
}

func resolveProperty(cat *catalog.Catalog, app catalog.ApplicationID, arg string) (catalog.Descriptor, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		return cat.Lookup(app, id)
	}

	d, err := cat.LookupName(app, arg)
	if err == nil {
		return d, nil
	}
	if suggestion, ok := cat.Suggest(app, arg); ok {
		return catalog.Descriptor{}, fmt.Errorf("%w (did you mean %q?)", err, suggestion)
	}
	return catalog.Descriptor{}, err
}

// parseDataType accepts a type name or its Plex number.
func parseDataType(s string) (plex.DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return plex.DataTypeUnspecified, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(plex.DataTypeMovie) || n > int(plex.DataTypeEpisode) {
			return 0, fmt.Errorf("invalid --data-type %d: must be 1-4", n)
		}
		return plex.DataType(n), nil
	}
	if dt := plex.DataTypeFor(s); dt != plex.DataTypeUnspecified {
		return dt, nil
	}
	return 0, fmt.Errorf("invalid --data-type %q: must be movie, show, season or episode", s)
}

// ruleContext builds the rule for collection properties; nil without a name.
func ruleContext(name, collection string) *getter.RuleContext {
	if name == "" && collection == "" {
		return nil
	}
	return &getter.RuleContext{
		Name:                 name,
		ManualCollection:     collection != "",
		ManualCollectionName: collection,
	}
}

func printEvalHuman(ratingKey string, results []evalResult) {
	fmt.Fprintf(stdout, "Item %s\n\n", ratingKey)
	for _, r := range results {
		fmt.Fprintf(stdout, "  %-38s %s\n", r.Name, r.Result)
	}
}
