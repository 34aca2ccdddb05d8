package hijri

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

const DefaultTimeout = 5 * time.Second

// RemoteConverter asks the external calendar authority for conversions.
// Every call is bounded by the client timeout; any network, timeout or
// malformed-response failure is returned as an error so the failover can
// answer locally instead.
type RemoteConverter struct {
	baseURL string
	client  *http.Client
}

func NewRemoteConverter(baseURL string, timeout time.Duration) *RemoteConverter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RemoteConverter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type convertRequest struct {
	Date     string `json:"date"`
	Calendar string `json:"calendar"`
}

type convertResponse struct {
	Hijri *domain.HijriDate `json:"hijri"`
}

type toGregorianRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type toGregorianResponse struct {
	Gregorian string `json:"gregorian"`
}

func (c *RemoteConverter) ToHijri(ctx context.Context, date time.Time, variant domain.CalendarVariant) (domain.HijriDate, error) {
	if variant == "" {
		variant = domain.VariantUmmAlQura
	}

	var resp convertResponse
	err := c.post(ctx, "/hijri/convert", convertRequest{
		Date:     date.UTC().Format(domain.DateLayout),
		Calendar: string(variant),
	}, &resp)
	if err != nil {
		return domain.HijriDate{}, err
	}

	if resp.Hijri == nil {
		return domain.HijriDate{}, fmt.Errorf("authority response missing hijri date")
	}
	if err := resp.Hijri.Validate(); err != nil {
		return domain.HijriDate{}, fmt.Errorf("authority returned invalid hijri date: %w", err)
	}

	return *resp.Hijri, nil
}

func (c *RemoteConverter) ToGregorian(ctx context.Context, date domain.HijriDate) (time.Time, error) {
	if err := date.Validate(); err != nil {
		return time.Time{}, err
	}

	var resp toGregorianResponse
	err := c.post(ctx, "/hijri/to-gregorian", toGregorianRequest{
		Year:  date.Year,
		Month: date.Month,
		Day:   date.Day,
	}, &resp)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(domain.DateLayout, resp.Gregorian)
	if err != nil {
		return time.Time{}, fmt.Errorf("authority returned malformed gregorian date %q: %w", resp.Gregorian, err)
	}
	return t.UTC(), nil
}

func (c *RemoteConverter) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("authority responded with status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed authority response: %w", err)
	}
	return nil
}
