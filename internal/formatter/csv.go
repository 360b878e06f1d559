package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/yildizm/CodeLens/internal/api"
)

// csvFormatter writes one row per issue
type csvFormatter struct {
	source string
}

// NewCSV creates a new CSV formatter
func NewCSV(source string) Formatter {
	return &csvFormatter{source: source}
}

func (f *csvFormatter) Format(resp *api.AnalysisResponse) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{"Source", "Language", "Code", "Line", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, issue := range resp.Analysis.Issues {
		line := ""
		if issue.LineNumber > 0 {
			line = strconv.Itoa(issue.LineNumber)
		}
		record := []string{f.source, resp.Language, issue.Code, line, issue.Message}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return b.Bytes(), nil
}
