package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"opsboard/internal/service/kpi"
)

func (c *Client) DashboardKPI(ctx context.Context) (*kpi.Summary, error) {
	var summary kpi.Summary
	if err := c.get(ctx, "/dashboard/kpi", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) DashboardProductivity(ctx context.Context) (*kpi.Productivity, error) {
	var report kpi.Productivity
	if err := c.get(ctx, "/dashboard/productivity", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Export is a downloaded project document: the markdown bytes plus the
// filename the server chose ({projectName}_{yyyy-MM-dd}.md).
type Export struct {
	Filename string
	Content  []byte
}

// ExportProjectMarkdown downloads the project's markdown export. The raw
// body is returned as-is rather than decoded as JSON.
func (c *Client) ExportProjectMarkdown(ctx context.Context, projectID int) (*Export, error) {
	path := fmt.Sprintf("/exports/project/%d/md", projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var out *Export
	err = c.cb.Execute(func() error {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return fmt.Errorf("request GET %s: %w", path, doErr)
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("read response: %w", readErr)
		}
		if resp.StatusCode == http.StatusNotFound {
			out = nil
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
		}
		out = &Export{
			Filename: dispositionFilename(resp.Header.Get("Content-Disposition")),
			Content:  data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("project not found: %w", ErrNotFound)
	}
	return out, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
