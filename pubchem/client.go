// Package pubchem is a minimal client for the PubChem PUG REST API,
// covering compound lookup by CID and name-to-SMILES resolution.
package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/chemeval/chemeval/schema"
)

// DefaultBaseURL is the public PUG REST endpoint.
const DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// Client queries the PubChem PUG REST API. Requests are throttled to stay
// under the public rate limit.
type Client struct {
	baseURL    string
	httpClient *http.Client
	throttle   time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithThrottle sets the minimum delay between requests.
func WithThrottle(d time.Duration) Option {
	return func(c *Client) { c.throttle = d }
}

// NewClient creates a PubChem client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		throttle:   500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compound is the subset of compound data the harness needs.
type Compound struct {
	CID             int
	IUPACName       string
	CanonicalSMILES string
	Synonyms        []string
}

// PreferredName returns the IUPAC name, falling back to the first synonym.
func (c *Compound) PreferredName() string {
	if c.IUPACName != "" {
		return c.IUPACName
	}
	if len(c.Synonyms) > 0 {
		return c.Synonyms[0]
	}
	return ""
}

// CompoundByCID fetches compound properties and synonyms for a numeric CID.
func (c *Client) CompoundByCID(ctx context.Context, cid int) (*Compound, error) {
	compound := &Compound{CID: cid}

	var props struct {
		PropertyTable struct {
			Properties []struct {
				CID             int    `json:"CID"`
				IUPACName       string `json:"IUPACName"`
				CanonicalSMILES string `json:"CanonicalSMILES"`
			} `json:"Properties"`
		} `json:"PropertyTable"`
	}
	path := fmt.Sprintf("/compound/cid/%d/property/IUPACName,CanonicalSMILES/JSON", cid)
	if err := c.get(ctx, path, &props); err != nil {
		return nil, err
	}
	if len(props.PropertyTable.Properties) == 0 {
		return nil, schema.ErrCompoundNotFound
	}
	compound.IUPACName = props.PropertyTable.Properties[0].IUPACName
	compound.CanonicalSMILES = props.PropertyTable.Properties[0].CanonicalSMILES

	var synonyms struct {
		InformationList struct {
			Information []struct {
				CID     int      `json:"CID"`
				Synonym []string `json:"Synonym"`
			} `json:"Information"`
		} `json:"InformationList"`
	}
	path = fmt.Sprintf("/compound/cid/%d/synonyms/JSON", cid)
	if err := c.get(ctx, path, &synonyms); err == nil {
		if len(synonyms.InformationList.Information) > 0 {
			compound.Synonyms = synonyms.InformationList.Information[0].Synonym
		}
	}

	return compound, nil
}

// SMILESByName resolves a compound name to its canonical SMILES string.
func (c *Client) SMILESByName(ctx context.Context, name string) (string, error) {
	var props struct {
		PropertyTable struct {
			Properties []struct {
				CanonicalSMILES string `json:"CanonicalSMILES"`
			} `json:"Properties"`
		} `json:"PropertyTable"`
	}
	path := fmt.Sprintf("/compound/name/%s/property/CanonicalSMILES/JSON", url.PathEscape(name))
	if err := c.get(ctx, path, &props); err != nil {
		return "", err
	}
	if len(props.PropertyTable.Properties) == 0 || props.PropertyTable.Properties[0].CanonicalSMILES == "" {
		return "", fmt.Errorf("%w: %s", schema.ErrCompoundNotFound, name)
	}
	return props.PropertyTable.Properties[0].CanonicalSMILES, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return schema.ErrCompoundNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pubchem: status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, result)
}

// wait enforces the request throttle, honoring context cancellation.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	elapsed := time.Since(c.lastCall)
	delay := c.throttle - elapsed
	c.lastCall = time.Now().Add(delay)
	c.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
