package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"realtylink-scraper/models"
	"realtylink-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing, summary models.RunSummary) *models.InsightReport {
	report := &models.InsightReport{
		Summary:          summary,
		ListingsByRegion: make(map[string]int),
		BedroomHistogram: make(map[int]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var bedrooms int
	for _, l := range listings {
		if len(l.Photos) > 0 {
			report.WithPhotos++
			report.TotalPhotos += len(l.Photos)
			if report.MostPhotographed == nil || len(l.Photos) > len(report.MostPhotographed.Photos) {
				report.MostPhotographed = l
			}
		}
		if l.Price != "" {
			report.WithPrice++
		}
		if l.Region != "" {
			report.ListingsByRegion[l.Region]++
		}
		report.BedroomHistogram[l.Bedrooms]++
		bedrooms += l.Bedrooms
	}

	report.AverageBedrooms = round2(float64(bedrooms) / float64(len(listings)))
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  REALTYLINK RENTAL COLLECTION REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Run
	fmt.Printf("\033[1;33m  Run\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.Summary.RunID != "" {
		fmt.Printf("  Run ID            : %s\n", r.Summary.RunID)
	}
	fmt.Printf("  Links discovered  : \033[1m%d\033[0m\n", r.Summary.Discovered)
	fmt.Printf("  Detail attempted  : \033[1m%d\033[0m\n", r.Summary.Attempted)
	fmt.Printf("  Detail succeeded  : \033[1;32m%d\033[0m\n", r.Summary.Succeeded)
	fmt.Printf("  Fetch failures    : \033[1;31m%d\033[0m\n", r.Summary.FetchFailed)
	fmt.Printf("  Parse failures    : \033[1;31m%d\033[0m\n", r.Summary.ParseFailed)
	if !r.Summary.FinishedAt.IsZero() {
		fmt.Printf("  Duration          : %v\n", r.Summary.FinishedAt.Sub(r.Summary.StartedAt).Round(time.Millisecond))
	}
	fmt.Println()

	// Dataset
	fmt.Printf("\033[1;33m  Dataset\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings          : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  With price        : %d\n", r.WithPrice)
	fmt.Printf("  With photos       : %d (%d photos)\n", r.WithPhotos, r.TotalPhotos)
	fmt.Printf("  Average bedrooms  : %.2f\n", r.AverageBedrooms)
	if r.MostPhotographed != nil {
		fmt.Printf("  Most photographed : %s (%d)\n", truncate(r.MostPhotographed.Title, 30), len(r.MostPhotographed.Photos))
	}
	fmt.Println()

	// Bedrooms
	fmt.Printf("\033[1;33m  Bedrooms\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.BedroomHistogram) == 0 {
		fmt.Printf("  No listings\n")
	} else {
		keys := make([]int, 0, len(r.BedroomHistogram))
		for k := range r.BedroomHistogram {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			fmt.Printf("  %2d  %s (%d)\n", k, strings.Repeat("█", r.BedroomHistogram[k]), r.BedroomHistogram[k])
		}
	}
	fmt.Println()

	// Listings by Region
	fmt.Printf("\033[1;33m  Listings by Region\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByRegion) == 0 {
		fmt.Printf("  No region data\n")
	} else {
		type regionCount struct {
			region string
			count  int
		}
		var regions []regionCount
		for region, cnt := range r.ListingsByRegion {
			regions = append(regions, regionCount{region, cnt})
		}
		sort.Slice(regions, func(i, j int) bool {
			if regions[i].count != regions[j].count {
				return regions[i].count > regions[j].count
			}
			return regions[i].region < regions[j].region
		})
		for _, rc := range regions {
			bar := strings.Repeat("█", rc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(rc.region, 28), bar, rc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
