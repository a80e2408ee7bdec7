// Package hrplatform talks to the HR/communications platform ("InTouch").
// Users are looked up by the employee id in their profile; deactivation
// depends on the account's lifecycle status, since invitations that were
// never accepted must be deleted rather than deactivated.
package hrplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"offboard/internal/platform/config"
	dErrors "offboard/pkg/domainerrors"
)

// userUpdateContentType is the platform's versioned media type for status
// updates.
const userUpdateContentType = "application/vnd.staffbase.accessors.user-update.v1+json"

// ErrNotFound reports that the registration matches no platform user.
var ErrNotFound = errors.New("hrplatform: user not found")

// Account lifecycle statuses the platform reports.
const (
	StatusActivated   = "activated"
	StatusDeactivated = "deactivated"
	StatusPending     = "pending"
	StatusCreated     = "created"
	StatusInvited     = "invited"
	StatusContact     = "contact"
)

// User is the platform's view of one person.
type User struct {
	PlatformID   string
	Name         string
	Email        string
	Role         string
	Status       string
	Registration string
}

// Active reports whether the account is in the activated state.
func (u User) Active() bool {
	return u.Status == StatusActivated
}

// Outcome describes what a deactivation or activation actually did.
type Outcome struct {
	// Action is one of "deactivated", "deleted", "activated", "none".
	Action  string
	Message string
}

// Client is an HTTP client for the platform API.
type Client struct {
	cfg    config.HRPlatformConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg config.HRPlatformConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type listResponse struct {
	Data []rawUser `json:"data"`
}

type rawUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position"`
	Status    string `json:"status"`
	Profile   struct {
		WorkEmail  string `json:"workemail"`
		EmployeeID string `json:"employeeid"`
	} `json:"profile"`
}

// Search finds the platform user carrying the registration as employee id.
// Returns ErrNotFound when nobody matches.
func (c *Client) Search(ctx context.Context, registration string) (User, error) {
	filter := fmt.Sprintf("profile.employeeid eq %q", registration)
	endpoint := c.cfg.BaseURL + "?filter=" + url.QueryEscape(filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return User{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeUpstream, "hr platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return User{}, dErrors.Newf(dErrors.CodeUpstream,
			"hr platform search returned %d: %s", resp.StatusCode, string(body))
	}

	users, err := decodeUsers(resp.Body)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeUpstream, "hr platform response malformed")
	}
	if len(users) == 0 {
		return User{}, ErrNotFound
	}

	raw := users[0]
	return User{
		PlatformID:   raw.ID,
		Name:         strings.TrimSpace(raw.FirstName + " " + raw.LastName),
		Email:        raw.Profile.WorkEmail,
		Role:         raw.Position,
		Status:       raw.Status,
		Registration: registration,
	}, nil
}

// decodeUsers accepts both the enveloped `{"data": [...]}` shape and a bare
// array, which the platform emits depending on the endpoint version.
func decodeUsers(r io.Reader) ([]rawUser, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var envelope listResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare []rawUser
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// Deactivate removes the user's access according to their current status:
// activated accounts are deactivated, never-accepted invitations are
// deleted, contacts and already-deactivated accounts are left alone, and
// anything unrecognized refuses to act.
func (c *Client) Deactivate(ctx context.Context, registration string) (Outcome, error) {
	user, err := c.Search(ctx, registration)
	if err != nil {
		return Outcome{}, err
	}

	switch user.Status {
	case StatusActivated:
		if err := c.setStatus(ctx, user.PlatformID, StatusDeactivated); err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Action:  "deactivated",
			Message: fmt.Sprintf("User %s was successfully deactivated.", user.Name),
		}, nil

	case StatusPending, StatusCreated, StatusInvited:
		if err := c.delete(ctx, user.PlatformID); err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Action:  "deleted",
			Message: fmt.Sprintf("User invitation %s was successfully deleted.", user.Name),
		}, nil

	case StatusContact, StatusDeactivated:
		return Outcome{
			Action:  "none",
			Message: fmt.Sprintf("User %s is set as %q and does not need to be changed.", user.Name, user.Status),
		}, nil

	default:
		return Outcome{}, dErrors.Newf(dErrors.CodeValidation,
			"unknown status %q, operation canceled for safety", user.Status)
	}
}

// Activate is the reverse transition for deactivated accounts. Other
// statuses either need no action or cannot be reactivated automatically.
func (c *Client) Activate(ctx context.Context, registration string) (Outcome, error) {
	user, err := c.Search(ctx, registration)
	if err != nil {
		return Outcome{}, err
	}

	switch user.Status {
	case StatusDeactivated:
		if err := c.setStatus(ctx, user.PlatformID, StatusActivated); err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Action:  "activated",
			Message: fmt.Sprintf("User %s was successfully reactivated.", user.Name),
		}, nil

	case StatusActivated:
		return Outcome{
			Action:  "none",
			Message: fmt.Sprintf("User %s is already active.", user.Name),
		}, nil

	default:
		return Outcome{}, dErrors.Newf(dErrors.CodeValidation,
			"status %q does not allow automatic reactivation", user.Status)
	}
}

func (c *Client) setStatus(ctx context.Context, platformID, status string) error {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("marshal status payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.cfg.BaseURL+"/"+platformID, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.Token)
	req.Header.Set("Content-Type", userUpdateContentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "hr platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return dErrors.Newf(dErrors.CodeUpstream,
			"hr platform status update returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) delete(ctx context.Context, platformID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.BaseURL+"/"+platformID, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "hr platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return dErrors.Newf(dErrors.CodeUpstream,
			"hr platform delete returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
