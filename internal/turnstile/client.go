// Package turnstile talks to the physical access-control network ("Acesso"):
// one controller per site, all carrying the same user base keyed by the
// numeric registration. Calls are best-effort per site; a site being offline
// must not block revocation at the others.
package turnstile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"offboard/internal/platform/config"
	dErrors "offboard/pkg/domainerrors"
)

// revokeEndTime is the epoch second stamped as the account's access end.
// Any instant in the past blocks the card immediately.
const revokeEndTime = 1700000000

// siteTimeout bounds each controller call; the devices answer fast or not
// at all.
const siteTimeout = 5 * time.Second

// Client fans calls out to every configured site controller.
type Client struct {
	sites  []config.TurnstileSite
	http   *http.Client
	logger *slog.Logger
}

func NewClient(sites []config.TurnstileSite, logger *slog.Logger) *Client {
	return &Client{
		sites:  sites,
		http:   &http.Client{Timeout: siteTimeout},
		logger: logger,
	}
}

type command struct {
	Object string         `json:"object"`
	Values map[string]any `json:"values,omitempty"`
	Where  map[string]any `json:"where,omitempty"`
}

func userFilter(userID int) map[string]any {
	return map[string]any{"users": map[string]any{"id": userID}}
}

// Revoke ends the user's access at every site. Site-level failures are
// logged and swallowed; the call as a whole only fails when the
// registration is not a valid controller user id.
func (c *Client) Revoke(ctx context.Context, registration string) error {
	userID, err := strconv.Atoi(registration)
	if err != nil {
		return dErrors.Newf(dErrors.CodeValidation,
			"registration %q is not a numeric turnstile user id", registration)
	}

	cmd := command{
		Object: "users",
		Values: map[string]any{"end_time": revokeEndTime},
		Where:  userFilter(userID),
	}

	for _, site := range c.sites {
		if err := c.post(ctx, site, "modify_objects.fcgi", cmd, nil); err != nil {
			c.logger.WarnContext(ctx, "turnstile revoke failed at site",
				"site", site.Name,
				"registration", registration,
				"error", err,
			)
			continue
		}
		c.logger.InfoContext(ctx, "turnstile access revoked",
			"site", site.Name,
			"registration", registration,
		)
	}
	return nil
}

type loadResponse struct {
	Users []struct {
		ID      int   `json:"id"`
		EndTime int64 `json:"end_time"`
	} `json:"users"`
}

// Exists reports whether any site still knows the user with unexpired
// access. An unreachable site counts as "unknown" and is skipped.
func (c *Client) Exists(ctx context.Context, registration string) (bool, error) {
	userID, err := strconv.Atoi(registration)
	if err != nil {
		return false, dErrors.Newf(dErrors.CodeValidation,
			"registration %q is not a numeric turnstile user id", registration)
	}

	cmd := command{Object: "users", Where: userFilter(userID)}
	now := time.Now().Unix()

	for _, site := range c.sites {
		var res loadResponse
		if err := c.post(ctx, site, "load_objects.fcgi", cmd, &res); err != nil {
			c.logger.WarnContext(ctx, "turnstile probe failed at site",
				"site", site.Name,
				"registration", registration,
				"error", err,
			)
			continue
		}
		for _, u := range res.Users {
			if u.ID == userID && (u.EndTime == 0 || u.EndTime > now) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c *Client) post(ctx context.Context, site config.TurnstileSite, op string, cmd command, out any) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s?session=%s", site.URL, op, site.Session)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", site.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", site.Name, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", site.Name, err)
		}
	}
	return nil
}
