package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/launchdash/internal/model"
)

// RenderSummary prints a short summary of the selected records.
func RenderSummary(w io.Writer, sel model.Selection, s Summary) error {
	if _, err := fmt.Fprintf(w, "Selection: site=%s  payload=%s\n", sel.Site, FormatRange(sel.Payload)); err != nil {
		return err
	}
	if s.Launches == 0 {
		_, err := fmt.Fprintln(w, "No launches in selection.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Launches: %d  Successes: %d  Success rate: %.1f%%  Payload: %.0f-%.0f kg\n\n",
		s.Launches, s.Successes, s.SuccessRate()*100, s.MinPayload, s.MaxPayload); err != nil {
		return err
	}
	return nil
}

// RenderProportionTable prints the proportion view with shares of the total.
func RenderProportionTable(w io.Writer, view model.ProportionView) error {
	var headers []string
	var rows [][]string
	var title string
	if view.Site == model.AllSites {
		title = "Successful Launches by Site"
		headers = []string{"Site", "Successes", "Share"}
		total := 0
		for _, c := range view.BySite {
			total += c.Successes
		}
		for _, c := range view.BySite {
			rows = append(rows, []string{c.Site, strconv.Itoa(c.Successes), formatShare(c.Successes, total)})
		}
	} else {
		title = fmt.Sprintf("Outcomes for site %s", view.Site)
		headers = []string{"Class", "Outcome", "Launches", "Share"}
		total := 0
		for _, c := range view.ByClass {
			total += c.Count
		}
		for _, c := range view.ByClass {
			rows = append(rows, []string{strconv.Itoa(c.Class), OutcomeLabel(c.Class), strconv.Itoa(c.Count), formatShare(c.Count, total)})
		}
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No launches found.")
		return err
	}
	return writeTable(w, headers, rows, map[int]bool{1: view.Site == model.AllSites, 2: true, 3: true})
}

// RenderCorrelationTable prints the filtered rows of the correlation view.
func RenderCorrelationTable(w io.Writer, view model.CorrelationView) error {
	if _, err := fmt.Fprintf(w, "Launches with payload %s\n", FormatRange(view.Payload)); err != nil {
		return err
	}
	if len(view.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No launches found.")
		return err
	}
	headers := []string{"Flight", "Site", "Payload (kg)", "Class", "Booster"}
	rows := make([][]string, 0, len(view.Rows))
	for _, r := range view.Rows {
		flight := "-"
		if r.FlightNumber > 0 {
			flight = strconv.Itoa(r.FlightNumber)
		}
		rows = append(rows, []string{
			flight,
			r.Site,
			fmt.Sprintf("%.1f", r.PayloadMassKg),
			strconv.Itoa(r.Class),
			r.BoosterCategory,
		})
	}
	return writeTable(w, headers, rows, map[int]bool{0: true, 2: true, 3: true})
}

// RenderSiteRates prints per-site success rates, best first.
func RenderSiteRates(w io.Writer, rates []model.SiteRate) error {
	if _, err := fmt.Fprintln(w, "Success Rate by Site"); err != nil {
		return err
	}
	if len(rates) == 0 {
		_, err := fmt.Fprintln(w, "No launches found.")
		return err
	}
	rows := make([][]string, 0, len(rates))
	for _, r := range RankByRate(rates) {
		rows = append(rows, []string{
			r.Site,
			strconv.Itoa(r.Launches),
			strconv.Itoa(r.Successes),
			fmt.Sprintf("%.1f%%", r.Rate()*100),
		})
	}
	return writeTable(w, []string{"Site", "Launches", "Successes", "Rate"}, rows, map[int]bool{1: true, 2: true, 3: true})
}

// OutcomeLabel names an outcome class.
func OutcomeLabel(class int) string {
	if class == model.ClassSuccess {
		return "Success"
	}
	return "Failure"
}

// FormatRange formats a payload range in kilograms.
func FormatRange(p model.PayloadRange) string {
	return fmt.Sprintf("[%.0f, %.0f] kg", p.Low, p.High)
}

func formatShare(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
