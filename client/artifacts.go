package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opsboard/internal/model"
)

// Briefs

type BriefParams struct {
	TaskID          int    `json:"task_id"`
	Purpose         string `json:"purpose"`
	SuccessCriteria string `json:"success_criteria"`
	Constraints     string `json:"constraints"`
	Priority        string `json:"priority"`
	Validation      string `json:"validation"`
}

type UpdateBriefParams struct {
	Purpose         *string `json:"purpose,omitempty"`
	SuccessCriteria *string `json:"success_criteria,omitempty"`
	Constraints     *string `json:"constraints,omitempty"`
	Priority        *string `json:"priority,omitempty"`
	Validation      *string `json:"validation,omitempty"`
}

// CreateBrief attaches the five-sentence brief to a task. A second brief on
// the same task fails with ErrConflict.
func (c *Client) CreateBrief(ctx context.Context, params BriefParams) (*model.Brief, error) {
	var b model.Brief
	if err := c.post(ctx, "/briefs", params, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// TryCreateBrief is CreateBrief with the conflict collapsed to a nil result,
// for callers that treat "already exists" as a no-op.
func (c *Client) TryCreateBrief(ctx context.Context, params BriefParams) (*model.Brief, error) {
	b, err := c.CreateBrief(ctx, params)
	if errors.Is(err, ErrConflict) {
		return nil, nil
	}
	return b, err
}

func (c *Client) ListBriefs(ctx context.Context) ([]model.Brief, error) {
	var briefs []model.Brief
	if err := c.get(ctx, "/briefs", nil, &briefs); err != nil {
		return nil, err
	}
	return briefs, nil
}

func (c *Client) GetBriefByTask(ctx context.Context, taskID int) (*model.Brief, error) {
	var b model.Brief
	if err := c.get(ctx, fmt.Sprintf("/briefs/task/%d", taskID), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBrief(ctx context.Context, briefID int, params UpdateBriefParams) (*model.Brief, error) {
	var b model.Brief
	if err := c.patch(ctx, fmt.Sprintf("/briefs/%d", briefID), params, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) DeleteBrief(ctx context.Context, briefID int) error {
	return c.delete(ctx, fmt.Sprintf("/briefs/%d", briefID))
}

// Definition of done

type DoDParams struct {
	TaskID             int        `json:"task_id"`
	DeliverableFormats string     `json:"deliverable_formats"`
	MandatoryChecks    []string   `json:"mandatory_checks"`
	QualityBar         string     `json:"quality_bar"`
	Verification       string     `json:"verification"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	VersionTag         string     `json:"version_tag,omitempty"`
}

// CreateDoD returns the new definition's id. A second DoD on the same task
// fails with ErrConflict.
func (c *Client) CreateDoD(ctx context.Context, params DoDParams) (int, error) {
	var resp idResponse
	if err := c.post(ctx, "/dod", params, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// TryCreateDoD collapses the conflict to a zero id, mirroring TryCreateBrief.
func (c *Client) TryCreateDoD(ctx context.Context, params DoDParams) (int, error) {
	id, err := c.CreateDoD(ctx, params)
	if errors.Is(err, ErrConflict) {
		return 0, nil
	}
	return id, err
}

func (c *Client) ListDoDs(ctx context.Context) ([]model.DoD, error) {
	var dods []model.DoD
	if err := c.get(ctx, "/dod", nil, &dods); err != nil {
		return nil, err
	}
	return dods, nil
}

func (c *Client) GetDoDByTask(ctx context.Context, taskID int) (*model.DoD, error) {
	var d model.DoD
	if err := c.get(ctx, fmt.Sprintf("/dod/task/%d", taskID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) UpdateDoD(ctx context.Context, dodID int, params DoDParams) (*model.DoD, error) {
	var d model.DoD
	if err := c.patch(ctx, fmt.Sprintf("/dod/%d", dodID), params, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) DeleteDoD(ctx context.Context, dodID int) error {
	return c.delete(ctx, fmt.Sprintf("/dod/%d", dodID))
}

// Decision logs

type DecisionParams struct {
	TaskID           int       `json:"task_id"`
	Date             time.Time `json:"date"`
	Problem          string    `json:"problem"`
	Options          string    `json:"options"`
	DecisionReason   string    `json:"decision_reason"`
	AssumptionsRisks string    `json:"assumptions_risks"`
}

func (c *Client) CreateDecision(ctx context.Context, params DecisionParams) (int, error) {
	var resp idResponse
	if err := c.post(ctx, "/decisions", params, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) ListDecisions(ctx context.Context) ([]model.DecisionLog, error) {
	var decisions []model.DecisionLog
	if err := c.get(ctx, "/decisions", nil, &decisions); err != nil {
		return nil, err
	}
	return decisions, nil
}

func (c *Client) ListDecisionsByTask(ctx context.Context, taskID int) ([]model.DecisionLog, error) {
	var decisions []model.DecisionLog
	if err := c.get(ctx, fmt.Sprintf("/decisions/task/%d", taskID), nil, &decisions); err != nil {
		return nil, err
	}
	return decisions, nil
}

// WriteDPlus7Review records the day-7 retrospective on a decision. Writing it
// before the window opens is allowed.
func (c *Client) WriteDPlus7Review(ctx context.Context, decisionID int, review string) (*model.DecisionLog, error) {
	var d model.DecisionLog
	body := map[string]string{"d_plus_7_review": review}
	if err := c.patch(ctx, fmt.Sprintf("/decisions/%d/dplus7", decisionID), body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) DeleteDecision(ctx context.Context, decisionID int) error {
	return c.delete(ctx, fmt.Sprintf("/decisions/%d", decisionID))
}

// Reviews

type ReviewParams struct {
	TaskID      int              `json:"task_id"`
	ReviewType  model.ReviewType `json:"review_type"`
	Positives   string           `json:"positives,omitempty"`
	Negatives   string           `json:"negatives,omitempty"`
	ChangesNext string           `json:"changes_next,omitempty"`
}

func (c *Client) CreateReview(ctx context.Context, params ReviewParams) (int, error) {
	var resp idResponse
	if err := c.post(ctx, "/reviews", params, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) ListReviews(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := c.get(ctx, "/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) ListReviewsByTask(ctx context.Context, taskID int) ([]model.Review, error) {
	var reviews []model.Review
	if err := c.get(ctx, fmt.Sprintf("/reviews/task/%d", taskID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) UpdateReview(ctx context.Context, reviewID int, params ReviewParams) (*model.Review, error) {
	var rv model.Review
	if err := c.patch(ctx, fmt.Sprintf("/reviews/%d", reviewID), params, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (c *Client) DeleteReview(ctx context.Context, reviewID int) error {
	return c.delete(ctx, fmt.Sprintf("/reviews/%d", reviewID))
}

// Samples

type SampleParams struct {
	TaskID     int     `json:"task_id"`
	Proportion float64 `json:"proportion"`
	Notes      string  `json:"notes,omitempty"`
	Approved   bool    `json:"approved,omitempty"`
}

func (c *Client) CreateSample(ctx context.Context, params SampleParams) (int, error) {
	var resp idResponse
	if err := c.post(ctx, "/samples", params, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) ListSamples(ctx context.Context) ([]model.Sample, error) {
	var samples []model.Sample
	if err := c.get(ctx, "/samples", nil, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func (c *Client) ListSamplesByTask(ctx context.Context, taskID int) ([]model.Sample, error) {
	var samples []model.Sample
	if err := c.get(ctx, fmt.Sprintf("/samples/task/%d", taskID), nil, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// UpdateSample replaces the sample's content; the PATCH body is the full
// payload, task id included.
func (c *Client) UpdateSample(ctx context.Context, sampleID int, params SampleParams) (*model.Sample, error) {
	var s model.Sample
	if err := c.patch(ctx, fmt.Sprintf("/samples/%d", sampleID), params, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSample(ctx context.Context, sampleID int) error {
	return c.delete(ctx, fmt.Sprintf("/samples/%d", sampleID))
}
