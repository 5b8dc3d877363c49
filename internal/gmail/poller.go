package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/rstanikk/dopamine/internal/ai"
	"github.com/rstanikk/dopamine/internal/googleauth"
	"github.com/rstanikk/dopamine/internal/kv"
	"github.com/rstanikk/dopamine/internal/models"
)

// defaultLookback is the window scanned on the first ever run, before a
// last-polled bookmark exists.
const defaultLookback = 24 * time.Hour

// Classifier decides whether a fetched message is a genuine booking enquiry.
type Classifier interface {
	Classify(ctx context.Context, subject, from, body string) (ai.Classification, error)
}

// Credentials mints access tokens for configured accounts.
type Credentials interface {
	AccessToken(ctx context.Context, account string) (string, error)
}

// PollResult summarizes one poller run.
type PollResult struct {
	NewCount int `json:"newCount"`
	Total    int `json:"total"`
}

// Poller checks the configured mailboxes for new booking enquiries. Runs are
// idempotent per message id: a message already in the stored inquiry list is
// neither re-classified nor duplicated. Overlapping runs are not mutually
// excluded; a concurrent run can classify the same message twice, but the
// final full-list write keeps storage duplicate-free either way.
type Poller struct {
	store      kv.Store
	creds      Credentials
	mail       MailClient
	classifier Classifier
	accounts   []string
	now        func() time.Time
}

// NewPoller creates a Poller over the given accounts.
func NewPoller(store kv.Store, creds Credentials, mail MailClient, classifier Classifier, accounts []string) *Poller {
	return &Poller{
		store:      store,
		creds:      creds,
		mail:       mail,
		classifier: classifier,
		accounts:   accounts,
		now:        time.Now,
	}
}

// Run performs one poll across all accounts and persists the updated inquiry
// list and last-polled bookmark. The bookmark advances even when no new
// inquiries were found, so the lookback window keeps moving.
func (p *Poller) Run(ctx context.Context) (PollResult, error) {
	existing := p.loadInquiries(ctx)
	seen := make(map[string]bool, len(existing))
	for _, inquiry := range existing {
		seen[inquiry.ID] = true
	}

	after := p.loadLastPolled(ctx)

	var fresh []models.EmailInquiry
	for _, account := range p.accounts {
		accessToken, err := p.creds.AccessToken(ctx, account)
		if errors.Is(err, googleauth.ErrNotConnected) {
			continue
		}
		if err != nil {
			// Token refresh failure skips the account until the next run.
			log.Printf("Poller: skipping account %s: %v", account, err)
			continue
		}

		refs, err := p.mail.ListMessages(ctx, accessToken, after)
		if err != nil {
			log.Printf("Poller: failed to list messages for %s: %v", account, err)
			continue
		}

		for _, ref := range refs {
			if seen[ref.ID] {
				continue
			}

			message, err := p.mail.GetMessage(ctx, accessToken, ref.ID)
			if err != nil {
				log.Printf("Poller: failed to fetch message %s: %v", ref.ID, err)
				continue
			}

			verdict, err := p.classifier.Classify(ctx, message.Subject, message.From, message.Body)
			if err != nil {
				log.Printf("Poller: classification failed for %s: %v", ref.ID, err)
				continue
			}
			seen[ref.ID] = true

			if !verdict.IsInquiry {
				continue
			}

			fresh = append(fresh, models.EmailInquiry{
				ID:            ref.ID,
				Account:       account,
				Subject:       message.Subject,
				From:          message.From,
				Date:          message.Date,
				Body:          message.Body,
				ExtractedData: verdict.Extracted,
			})
		}
	}

	updated := append(fresh, existing...)
	if len(updated) > models.MaxInquiries {
		updated = updated[:models.MaxInquiries]
	}

	if err := p.saveInquiries(ctx, updated); err != nil {
		return PollResult{}, err
	}
	if err := p.store.Put(ctx, kv.KeyLastPolled, strconv.FormatInt(p.now().UnixMilli(), 10)); err != nil {
		return PollResult{}, fmt.Errorf("failed to store last-polled bookmark: %w", err)
	}

	return PollResult{NewCount: len(fresh), Total: len(updated)}, nil
}

// loadInquiries reads the stored inquiry list; anything unreadable counts as
// an empty list.
func (p *Poller) loadInquiries(ctx context.Context) []models.EmailInquiry {
	raw, err := p.store.Get(ctx, kv.KeyInquiries)
	if err != nil {
		return nil
	}

	var inquiries []models.EmailInquiry
	if err := json.Unmarshal([]byte(raw), &inquiries); err != nil {
		log.Printf("Poller: discarding unreadable inquiry list: %v", err)
		return nil
	}
	return inquiries
}

func (p *Poller) saveInquiries(ctx context.Context, inquiries []models.EmailInquiry) error {
	raw, err := json.Marshal(inquiries)
	if err != nil {
		return fmt.Errorf("failed to encode inquiries: %w", err)
	}
	if err := p.store.Put(ctx, kv.KeyInquiries, string(raw)); err != nil {
		return fmt.Errorf("failed to store inquiries: %w", err)
	}
	return nil
}

func (p *Poller) loadLastPolled(ctx context.Context) time.Time {
	raw, err := p.store.Get(ctx, kv.KeyLastPolled)
	if err == nil {
		if millis, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			return time.UnixMilli(millis)
		}
	}
	return p.now().Add(-defaultLookback)
}
