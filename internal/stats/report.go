package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/bigramfilter/internal/model"
	"github.com/verte-zerg/bigramfilter/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs   []model.RunAggregate
	Models []model.ModelInfo
}

// BuildReport loads the last runs, oldest first, and the stored models.
// last <= 0 loads every run.
func BuildReport(ctx context.Context, st *store.Store, last int) (Report, error) {
	runs, err := st.ListRuns(ctx, last)
	if err != nil {
		return Report{}, err
	}
	models, err := st.ListModels(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{Runs: runs, Models: models}, nil
}

// RenderReport prints the summary and run history of r.
func RenderReport(w io.Writer, r Report, window, width int) error {
	if err := RenderSummary(w, r.Runs); err != nil {
		return err
	}
	return RenderHistory(w, r.Runs, window, width)
}

// RenderModels prints stored models.
func RenderModels(w io.Writer, models []model.ModelInfo) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, "No models found.")
		return err
	}
	headers := []string{"Name", "Transitions", "Charset", "Source", "Created"}
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{
			m.Name,
			strconv.FormatUint(m.Total, 10),
			m.Charset,
			m.Source,
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
