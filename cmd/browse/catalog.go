// cmd/browse/catalog.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
)

// catalogSource is the part of the API client the list commands use.
type catalogSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Courses(ctx context.Context) ([]domain.Course, error)
}

// listOptions mirrors the list filters of the web client.
type listOptions struct {
	minPrice     string
	maxPrice     string
	minRating    float64
	categories   []string
	conditions   []string
	availability []string
	levels       []string
	sort         string
	page         int
	pageSize     int
}

var (
	productOpts listOptions
	courseOpts  listOptions
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List published products",
	Example: `  browse products --category textiles,pottery --max-price 5000 --sort price-asc
  browse products --min-rating 4 --page 2`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return runProducts(cmd.Context(), client, productOpts, cmd.OutOrStdout())
	},
}

var coursesCmd = &cobra.Command{
	Use:     "courses",
	Short:   "List courses",
	Example: `  browse courses --level beginner,intermediate --sort rating-desc`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return runCourses(cmd.Context(), client, courseOpts, cmd.OutOrStdout())
	},
}

func init() {
	addListFlags(productsCmd, &productOpts)
	productsCmd.Flags().StringSliceVar(&productOpts.categories, "category", nil, "Categories to include")
	productsCmd.Flags().StringSliceVar(&productOpts.conditions, "condition", nil, "Conditions to include")
	productsCmd.Flags().StringSliceVar(&productOpts.availability, "availability", nil, "Availability to include")

	addListFlags(coursesCmd, &courseOpts)
	coursesCmd.Flags().StringSliceVar(&courseOpts.categories, "category", nil, "Categories to include")
	coursesCmd.Flags().StringSliceVar(&courseOpts.levels, "level", nil, "Levels to include")
}

func addListFlags(cmd *cobra.Command, o *listOptions) {
	f := cmd.Flags()
	f.StringVar(&o.minPrice, "min-price", "", "Lowest price")
	f.StringVar(&o.maxPrice, "max-price", "", "Highest price")
	f.Float64Var(&o.minRating, "min-rating", 0, "Lowest average rating, 0 to 5")
	f.StringVar(&o.sort, "sort", string(listing.SortNewest), "newest, price-asc, price-desc, rating-desc or popularity-desc")
	f.IntVar(&o.page, "page", 1, "Page to show")
	f.IntVar(&o.pageSize, "page-size", 12, "Items per page")
}

func runProducts(ctx context.Context, src catalogSource, o listOptions, w io.Writer) error {
	q, err := o.query(map[string][]string{
		domain.TagCategory:     lower(o.categories),
		domain.TagCondition:    lower(o.conditions),
		domain.TagAvailability: lower(o.availability),
	})
	if err != nil {
		return err
	}

	products, err := src.Products(ctx)
	if err != nil {
		return err
	}

	page := listing.Run(products, q)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tCONDITION\tPRICE\tRATING")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%.1f (%d)\n",
			p.Name, p.Category, p.Condition, p.Price.StringFixed(2), p.Currency, p.Rating, p.ReviewCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printPageFooter(w, page.Page, page.TotalPages, page.TotalCount, len(page.Items))
	return nil
}

func runCourses(ctx context.Context, src catalogSource, o listOptions, w io.Writer) error {
	levels := make([]string, 0, len(o.levels))
	for _, l := range o.levels {
		level, ok := domain.ParseCourseLevel(l)
		if !ok {
			return fmt.Errorf("unknown level %q", l)
		}
		levels = append(levels, string(level))
	}
	q, err := o.query(map[string][]string{
		domain.TagCategory: o.categories,
		domain.TagLevel:    levels,
	})
	if err != nil {
		return err
	}

	courses, err := src.Courses(ctx)
	if err != nil {
		return err
	}

	page := listing.Run(courses, q)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tINSTRUCTOR\tLEVEL\tPRICE\tRATING")
	for _, c := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f (%d)\n",
			c.Title, c.Instructor, c.Level, c.Price.StringFixed(2), c.Rating, c.ReviewCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printPageFooter(w, page.Page, page.TotalPages, page.TotalCount, len(page.Items))
	return nil
}

// query validates the options and turns them into a pipeline query.
func (o listOptions) query(tags map[string][]string) (listing.Query, error) {
	q := listing.Query{Page: o.page, PageSize: o.pageSize}

	if o.minPrice != "" {
		d, err := decimal.NewFromString(o.minPrice)
		if err != nil || d.IsNegative() {
			return q, fmt.Errorf("--min-price must be a non-negative number")
		}
		q.Criteria.PriceMin = d
	}
	if o.maxPrice != "" {
		d, err := decimal.NewFromString(o.maxPrice)
		if err != nil || d.IsNegative() {
			return q, fmt.Errorf("--max-price must be a non-negative number")
		}
		q.Criteria.PriceMax = &d
	}
	if o.minRating < 0 || o.minRating > 5 {
		return q, fmt.Errorf("--min-rating must be between 0 and 5")
	}
	if o.minRating > 0 {
		r := o.minRating
		q.Criteria.MinRating = &r
	}

	for group, values := range tags {
		if len(values) == 0 {
			continue
		}
		if q.Criteria.Tags == nil {
			q.Criteria.Tags = make(map[string][]string)
		}
		q.Criteria.Tags[group] = values
	}

	sort, err := listing.ParseSortOrder(o.sort)
	if err != nil {
		return q, err
	}
	q.Sort = sort
	return q, nil
}

func printPageFooter(w io.Writer, page, totalPages, total, shown int) {
	if total == 0 {
		fmt.Fprintln(w, "No items match these filters.")
		return
	}
	if shown == 0 {
		fmt.Fprintf(w, "Page %d is out of range, there are %d pages.\n", page, totalPages)
		return
	}
	fmt.Fprintf(w, "\nPage %d of %d, %d items\n", page, totalPages, total)
}

func lower(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
