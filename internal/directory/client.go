// Package directory talks to the corporate LDAP directory ("Rede"). Accounts
// are matched by the registration number stamped into their description
// attribute; disabling sets the disabled UAC bit, records who did it, and
// parks the entry in the disabled-accounts OU.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"offboard/internal/platform/config"
	dErrors "offboard/pkg/domainerrors"
)

// uacAccountDisable is the ACCOUNTDISABLE bit of userAccountControl.
const uacAccountDisable = 2

// ErrNotFound reports that no account matches the registration.
var ErrNotFound = errors.New("directory: user not found by registration number")

// AmbiguousError reports that more than one account matched. Destructive
// operations must never proceed against an ambiguous match.
type AmbiguousError struct {
	Registration string
	Count        int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("directory: %d accounts match registration %s", e.Count, e.Registration)
}

// User is one directory account.
type User struct {
	Name              string
	AccountName       string
	Enabled           bool
	Description       string
	DistinguishedName string

	uac int
}

// DisableAction distinguishes a fresh disable from one that found the
// account already disabled.
type DisableAction string

const (
	ActionDisabled        DisableAction = "disabled"
	ActionAlreadyDisabled DisableAction = "already_disabled"
)

// DisableResult is the outcome of a successful Disable call.
type DisableResult struct {
	Action DisableAction
	User   User
}

// conn is the subset of *ldap.Conn the client uses.
type conn interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Modify(req *ldap.ModifyRequest) error
	ModifyDN(req *ldap.ModifyDNRequest) error
	Close() error
}

// Client performs directory operations over short-lived bound connections.
type Client struct {
	cfg    config.DirectoryConfig
	logger *slog.Logger
	dial   func(ctx context.Context) (conn, error)
}

func NewClient(cfg config.DirectoryConfig, logger *slog.Logger) *Client {
	c := &Client{cfg: cfg, logger: logger}
	c.dial = c.dialLDAP
	return c
}

func (c *Client) dialLDAP(ctx context.Context) (conn, error) {
	l, err := ldap.DialURL(c.cfg.URL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "directory unreachable")
	}
	l.SetTimeout(c.cfg.Timeout)
	if err := l.Bind(c.cfg.BindDN, c.cfg.BindPassword); err != nil {
		_ = l.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "directory bind failed")
	}
	return l, nil
}

var searchAttributes = []string{
	"cn",
	"displayName",
	"sAMAccountName",
	"description",
	"userAccountControl",
	"distinguishedName",
}

// Search finds accounts whose description carries the registration. An empty
// registration lists every enabled account instead.
func (c *Client) Search(ctx context.Context, registration string) ([]User, error) {
	l, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	return c.search(l, registration)
}

func (c *Client) search(l conn, registration string) ([]User, error) {
	filter := "(&(objectClass=user)(!(userAccountControl:1.2.840.113556.1.4.803:=2)))"
	if registration != "" {
		filter = fmt.Sprintf("(&(objectClass=user)(description=*%s*))", ldap.EscapeFilter(registration))
	}

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		searchAttributes,
		nil,
	)

	res, err := l.Search(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "directory search failed")
	}

	users := make([]User, 0, len(res.Entries))
	for _, entry := range res.Entries {
		users = append(users, entryToUser(entry))
	}
	return users, nil
}

func entryToUser(entry *ldap.Entry) User {
	name := entry.GetAttributeValue("displayName")
	if name == "" {
		name = entry.GetAttributeValue("cn")
	}
	uac, _ := strconv.Atoi(entry.GetAttributeValue("userAccountControl"))
	return User{
		Name:              name,
		AccountName:       entry.GetAttributeValue("sAMAccountName"),
		Enabled:           uac&uacAccountDisable == 0,
		Description:       entry.GetAttributeValue("description"),
		DistinguishedName: entry.DN,
		uac:               uac,
	}
}

// Disable deactivates the single account matching the registration: sets the
// disabled UAC bit, stamps the description with the actor, and moves the
// entry into the disabled OU. Zero matches is ErrNotFound; more than one is
// an AmbiguousError and nothing is touched.
func (c *Client) Disable(ctx context.Context, registration, performedBy string) (DisableResult, error) {
	l, err := c.dial(ctx)
	if err != nil {
		return DisableResult{}, err
	}
	defer l.Close()

	users, err := c.search(l, registration)
	if err != nil {
		return DisableResult{}, err
	}
	if len(users) == 0 {
		return DisableResult{}, ErrNotFound
	}
	if len(users) > 1 {
		return DisableResult{}, &AmbiguousError{Registration: registration, Count: len(users)}
	}

	user := users[0]
	if !user.Enabled {
		return DisableResult{Action: ActionAlreadyDisabled, User: user}, nil
	}

	newDescription := fmt.Sprintf("%s | Disabled by %s (Offboarding System)", user.Description, performedBy)

	modify := ldap.NewModifyRequest(user.DistinguishedName, nil)
	modify.Replace("userAccountControl", []string{strconv.Itoa(user.uac | uacAccountDisable)})
	modify.Replace("description", []string{newDescription})
	if err := l.Modify(modify); err != nil {
		return DisableResult{}, dErrors.Wrap(err, dErrors.CodeUpstream, "directory disable failed")
	}

	rdn, _, _ := strings.Cut(user.DistinguishedName, ",")
	move := ldap.NewModifyDNRequest(user.DistinguishedName, rdn, true, c.cfg.DisabledOU)
	if err := l.ModifyDN(move); err != nil {
		return DisableResult{}, dErrors.Wrap(err, dErrors.CodeUpstream, "directory move to disabled OU failed")
	}

	c.logger.InfoContext(ctx, "directory account disabled",
		"registration", registration,
		"account", user.AccountName,
		"performed_by", performedBy,
	)
	user.Enabled = false
	return DisableResult{Action: ActionDisabled, User: user}, nil
}
