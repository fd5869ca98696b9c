package storage

import (
	"encoding/json"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

type jobRow struct {
	RequestID      string `db:"request_id"`
	Status         string `db:"status"`
	ConsumerApp    string `db:"consumer_app"`
	Platform       string `db:"platform"`
	Category       string `db:"category"`
	Aspect         string `db:"aspect"`
	Width          int    `db:"width"`
	Height         int    `db:"height"`
	ProviderID     string `db:"provider_id"`
	StorageBackend string `db:"storage_backend"`
	ImageURL       string `db:"image_url"`
	AltText        string `db:"alt_text"`
	ErrorCode      string `db:"error_code"`
	ErrorMessage   string `db:"error_message"`
	FallbackReason string `db:"fallback_reason"`
	DecisionJSON   string `db:"decision_json"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

type eventRow struct {
	ID          string `db:"id"`
	RequestID   string `db:"request_id"`
	Type        string `db:"type"`
	OK          int    `db:"ok"`
	SafeMessage string `db:"safe_message"`
	SafeData    string `db:"safe_data"`
	CreatedAt   int64  `db:"created_at"`
}

func toJobRow(j *audit.JobRecord) (*jobRow, error) {
	decision, err := json.Marshal(j.Decision)
	if err != nil {
		return nil, err
	}
	return &jobRow{
		RequestID:      j.RequestID,
		Status:         string(j.Status),
		ConsumerApp:    j.ConsumerApp,
		Platform:       j.Platform,
		Category:       j.Category,
		Aspect:         j.Aspect,
		Width:          j.Width,
		Height:         j.Height,
		ProviderID:     j.ProviderID,
		StorageBackend: j.StorageBackend,
		ImageURL:       j.ImageURL,
		AltText:        j.AltText,
		ErrorCode:      j.ErrorCode,
		ErrorMessage:   j.ErrorMessage,
		FallbackReason: j.FallbackReason,
		DecisionJSON:   string(decision),
		CreatedAt:      j.CreatedAt.UnixNano(),
		UpdatedAt:      j.UpdatedAt.UnixNano(),
	}, nil
}

func (r *jobRow) record() (*audit.JobRecord, error) {
	j := &audit.JobRecord{
		RequestID:      r.RequestID,
		Status:         audit.Status(r.Status),
		ConsumerApp:    r.ConsumerApp,
		Platform:       r.Platform,
		Category:       r.Category,
		Aspect:         r.Aspect,
		Width:          r.Width,
		Height:         r.Height,
		ProviderID:     r.ProviderID,
		StorageBackend: r.StorageBackend,
		ImageURL:       r.ImageURL,
		AltText:        r.AltText,
		ErrorCode:      r.ErrorCode,
		ErrorMessage:   r.ErrorMessage,
		FallbackReason: r.FallbackReason,
		CreatedAt:      time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt:      time.Unix(0, r.UpdatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(r.DecisionJSON), &j.Decision); err != nil {
		return nil, err
	}
	return j, nil
}

func toEventRow(e *audit.EventRecord) (*eventRow, error) {
	data := e.SafeData
	if data == nil {
		data = map[string]string{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ok := 0
	if e.OK {
		ok = 1
	}
	return &eventRow{
		ID:          e.ID,
		RequestID:   e.RequestID,
		Type:        string(e.Type),
		OK:          ok,
		SafeMessage: e.SafeMessage,
		SafeData:    string(raw),
		CreatedAt:   e.CreatedAt.UnixNano(),
	}, nil
}

func (r *eventRow) record() (*audit.EventRecord, error) {
	e := &audit.EventRecord{
		ID:          r.ID,
		RequestID:   r.RequestID,
		Type:        audit.EventType(r.Type),
		OK:          r.OK != 0,
		SafeMessage: r.SafeMessage,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(r.SafeData), &e.SafeData); err != nil {
		return nil, err
	}
	return e, nil
}
