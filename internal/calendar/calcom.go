// Package calendar provides the Cal.com booking collaborator.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	availabilityTimeout = 10 * time.Second
	bookingTimeout      = 15 * time.Second
	bookingTimeZone     = "America/New_York"
)

// Config for the Cal.com client.
type Config struct {
	APIKey      string
	BaseURL     string
	Username    string
	EventTypeID int
}

// Client talks to the Cal.com v1 REST API.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Cal.com client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cal.com/v1"
	}
	return &Client{
		config: cfg,
		client: &http.Client{},
	}
}

// Availability is the raw slot payload returned by Cal.com.
type Availability struct {
	Busy     []TimeRange     `json:"busy"`
	DateFrom time.Time       `json:"dateFrom"`
	DateTo   time.Time       `json:"dateTo"`
	Raw      json.RawMessage `json:"-"`
}

// TimeRange is one busy window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BookingRequest carries the attendee details for a new booking.
type BookingRequest struct {
	Name      string
	Email     string
	StartTime time.Time
	Notes     string
	Phone     string
}

// BookingResult reports the outcome of a booking attempt. API failures
// surface here as Success=false, never as an error.
type BookingResult struct {
	Success   bool   `json:"success"`
	BookingID string `json:"booking_id,omitempty"`
	UID       string `json:"booking_uid,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GetAvailability fetches the availability window starting now. A zero
// window defaults to 14 days.
func (c *Client) GetAvailability(ctx context.Context, window time.Duration) (*Availability, error) {
	if window <= 0 {
		window = 14 * 24 * time.Hour
	}
	from := time.Now()
	to := from.Add(window)

	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("eventTypeId", strconv.Itoa(c.config.EventTypeID))
	params.Set("startTime", from.Format(time.RFC3339))
	params.Set("endTime", to.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/availability?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build availability request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch availability: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch availability: status %d", resp.StatusCode)
	}

	var availability Availability
	if err := json.NewDecoder(resp.Body).Decode(&availability); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	availability.DateFrom = from
	availability.DateTo = to
	return &availability, nil
}

// CreateBooking books an appointment slot. Transport and API errors both
// come back as a failed result so callers can surface them to the chat
// surface without branching on error types.
func (c *Client) CreateBooking(ctx context.Context, booking BookingRequest) *BookingResult {
	ctx, cancel := context.WithTimeout(ctx, bookingTimeout)
	defer cancel()

	responses := map[string]string{
		"name":  booking.Name,
		"email": booking.Email,
		"notes": booking.Notes,
	}
	if booking.Phone != "" {
		responses["phone"] = booking.Phone
	}

	payload := map[string]interface{}{
		"eventTypeId": c.config.EventTypeID,
		"start":       booking.StartTime.Format(time.RFC3339),
		"responses":   responses,
		"timeZone":    bookingTimeZone,
		"language":    "en",
		"metadata":    map[string]string{},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return &BookingResult{Success: false, Error: fmt.Sprintf("encode booking: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/bookings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return &BookingResult{Success: false, Error: fmt.Sprintf("build booking request: %v", err)}
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &BookingResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &BookingResult{Success: false, Error: fmt.Sprintf("booking failed: %d", resp.StatusCode)}
	}

	var created struct {
		ID  json.Number `json:"id"`
		UID string      `json:"uid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return &BookingResult{Success: false, Error: fmt.Sprintf("decode booking response: %v", err)}
	}

	return &BookingResult{
		Success:   true,
		BookingID: created.ID.String(),
		UID:       created.UID,
		StartTime: booking.StartTime.Format(time.RFC3339),
		Message:   "Appointment booked successfully!",
	}
}

// BookingURL returns the public self-serve booking page.
func (c *Client) BookingURL() string {
	return "https://cal.com/" + c.config.Username
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
}
