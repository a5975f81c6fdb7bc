package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/toyorbit/toyorbit/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HistogramMonths is the length of the trailing monthly histogram
const HistogramMonths = 9

const monthKeyLayout = "2006-01"

// NoMonth is reported as top month when there are no orders
const NoMonth = "N/A"

// Ranked is a key with its count, used for every grouped statistic
type Ranked struct {
	Key   string
	Count int64
}

type MonthCount struct {
	Month string
	Count int64
}

// Stats are the derived figures of one customer's order history
type Stats struct {
	TotalOrders    int
	TotalRevenue   domain.Money
	AverageOrder   domain.Money
	MedianOrder    domain.Money
	Months         []MonthCount
	StatusCounts   []Ranked
	CategoryCounts []Ranked
	ProductCounts  []Ranked
	TopStatuses    []Ranked
	TopProducts    []Ranked
	TopCategories  []Ranked
	TopMonth       string
}

// ComputeStats derives the report statistics. now anchors the trailing
// histogram; every calendar computation is done in UTC.
func ComputeStats(orders []*domain.Order, items []domain.OrderItemDetail, now time.Time) Stats {
	s := Stats{
		TotalOrders: len(orders),
		Months:      trailingMonths(now.UTC(), HistogramMonths),
		TopMonth:    NoMonth,
	}

	totals := make([]float64, 0, len(orders))
	statuses := map[string]int64{}
	var byMonthName [13]int64
	slot := make(map[string]int, len(s.Months))
	for i, m := range s.Months {
		slot[m.Month] = i
	}
	for _, o := range orders {
		s.TotalRevenue = s.TotalRevenue.Add(o.TotalAmount)
		f, _ := o.TotalAmount.Float64()
		totals = append(totals, f)
		statuses[o.Status]++
		at := o.OrderDate.UTC()
		byMonthName[at.Month()]++
		if i, ok := slot[at.Format(monthKeyLayout)]; ok {
			s.Months[i].Count++
		}
	}
	s.TotalRevenue = domain.NewMoney(s.TotalRevenue.Decimal)

	if mean, err := stats.Mean(totals); err == nil {
		s.AverageOrder = domain.NewMoney(decimal.NewFromFloat(mean))
	}
	if median, err := stats.Median(totals); err == nil {
		s.MedianOrder = domain.NewMoney(decimal.NewFromFloat(median))
	}

	var best int64
	for m := time.January; m <= time.December; m++ {
		if byMonthName[m] > best {
			best = byMonthName[m]
			s.TopMonth = m.String()
		}
	}

	categories := map[string]int64{}
	products := map[string]int64{}
	for _, it := range items {
		categories[it.Category] += int64(it.Quantity)
		products[it.ProductName] += int64(it.Quantity)
	}

	s.StatusCounts = ranked(statuses)
	s.CategoryCounts = ranked(categories)
	s.ProductCounts = ranked(products)
	s.TopStatuses = top(s.StatusCounts, 3)
	s.TopCategories = top(s.CategoryCounts, 3)
	s.TopProducts = top(s.ProductCounts, 3)
	return s
}

// trailingMonths returns n zeroed buckets ending with the month of now
func trailingMonths(now time.Time, n int) []MonthCount {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthCount, n)
	for i := 0; i < n; i++ {
		out[i] = MonthCount{Month: first.AddDate(0, i-(n-1), 0).Format(monthKeyLayout)}
	}
	return out
}

// ranked orders counts descending, ties by key ascending
func ranked(m map[string]int64) []Ranked {
	out := lo.MapToSlice(m, func(k string, v int64) Ranked {
		return Ranked{Key: k, Count: v}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func top(r []Ranked, n int) []Ranked {
	if len(r) > n {
		return r[:n]
	}
	return r
}

// formatRanked renders "a(3), b(1)"
func formatRanked(r []Ranked) string {
	if len(r) == 0 {
		return "none"
	}
	return strings.Join(lo.Map(r, func(x Ranked, _ int) string {
		return x.Key + "(" + strconv.FormatInt(x.Count, 10) + ")"
	}), ", ")
}

// Humanize turns an enum value like "lego_sets" into "Lego Sets"
func Humanize(category string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}
