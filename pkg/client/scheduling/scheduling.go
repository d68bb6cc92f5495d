package scheduling

import (
	"context"
	"fmt"
	"net/url"

	"washbook/pkg/client"
	"washbook/pkg/model"
)

// Client calls the scheduling engine's HTTP API.
type Client struct {
	httpClient *client.HttpClient
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: client.NewHttpClient(baseURL),
	}
}

func (c *Client) Availability(ctx context.Context, providerID, serviceID, date string) (*client.Response, error) {
	q := url.Values{}
	q.Set("provider_id", providerID)
	q.Set("service_id", serviceID)
	q.Set("date", date)
	return c.httpClient.GET(ctx, "/api/v1/availability?"+q.Encode())
}

// CreateBooking sends Idempotency-Key when idempotencyKey is not empty.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*client.Response, error) {
	headers := map[string]string{"X-Customer-ID": req.CustomerID}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return c.httpClient.POST(ctx, "/api/v1/bookings", req, headers)
}

func (c *Client) GetBooking(ctx context.Context, id string) (*client.Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *Client) ListBookings(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) (*client.Response, error) {
	q := url.Values{}
	q.Set("provider_id", providerID)
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET(ctx, "/api/v1/bookings?"+q.Encode())
}

func (c *Client) Reschedule(ctx context.Context, id string, req model.RescheduleRequest) (*client.Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/reschedule", req, nil)
}

func (c *Client) Cancel(ctx context.Context, id, reason string) (*client.Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", model.CancelRequest{Reason: reason}, nil)
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*client.Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/status", model.StatusUpdate{Status: status})
}

func (c *Client) Stats(ctx context.Context, providerID, startDate, endDate string) (*client.Response, error) {
	q := url.Values{}
	q.Set("provider_id", providerID)
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	return c.httpClient.GET(ctx, "/api/v1/stats?"+q.Encode())
}

func (c *Client) GetCalendar(ctx context.Context, providerID string) (*client.Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/providers/"+url.PathEscape(providerID)+"/calendar")
}

func (c *Client) UpdateWeeklyHours(ctx context.Context, providerID string, update model.WeeklyHoursUpdate) (*client.Response, error) {
	return c.httpClient.PUT(ctx, "/api/v1/providers/"+url.PathEscape(providerID)+"/calendar/weekly", update)
}

func (c *Client) SetOverride(ctx context.Context, providerID, date string, hours model.HoursOverride) (*client.Response, error) {
	return c.httpClient.PUT(ctx, "/api/v1/providers/"+url.PathEscape(providerID)+"/calendar/overrides/"+url.PathEscape(date), hours)
}

func (c *Client) DeleteOverride(ctx context.Context, providerID, date string) (*client.Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/providers/"+url.PathEscape(providerID)+"/calendar/overrides/"+url.PathEscape(date))
}

func (c *Client) DecodeBooking(resp *client.Response) (*model.Booking, error) {
	var booking model.Booking
	if err := resp.DecodeData(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) DecodeAvailability(resp *client.Response) (*model.Availability, error) {
	var availability model.Availability
	if err := resp.DecodeData(&availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

func (c *Client) DecodeStats(resp *client.Response) (*model.BookingStats, error) {
	var stats model.BookingStats
	if err := resp.DecodeData(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
