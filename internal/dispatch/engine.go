package dispatch

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/rohitdas13/postdeck/internal/models"
	"github.com/rohitdas13/postdeck/internal/repository"
	"github.com/rohitdas13/postdeck/internal/transfer"
	"github.com/rohitdas13/postdeck/internal/xapi"
)

const (
	// refreshMargin is how close to expiry a credential may get before a
	// pass refreshes it ahead of submitting.
	refreshMargin = 5 * time.Minute

	// defaultConcurrency bounds how many users a pass processes at once.
	// Users share no state, so this only limits resource use.
	defaultConcurrency = 10
)

// Engine runs dispatch passes: it scans every user with a stored credential,
// submits their due posts in thread order, and writes the resulting status
// transitions back in a single collection write per user.
type Engine struct {
	creds       repository.CredentialRepository
	posts       repository.PostRepository
	client      xapi.Client
	now         func() time.Time
	concurrency int

	mu sync.Mutex // passes never overlap
}

func NewEngine(creds repository.CredentialRepository, posts repository.PostRepository, client xapi.Client) *Engine {
	return &Engine{
		creds:       creds,
		posts:       posts,
		client:      client,
		now:         time.Now,
		concurrency: defaultConcurrency,
	}
}

// Summary aggregates one pass across all users.
type Summary struct {
	Users   int `json:"users"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// UserSummary is the outcome of one user's slice of a pass.
type UserSummary struct {
	UserID  string `json:"user_id"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
	Err     error  `json:"-"`
}

// RunPass executes one dispatch pass. It never panics past its boundary and
// a failure for one user never aborts the others. If a pass is already in
// flight the call returns immediately with an empty summary, so duplicate
// trigger deliveries are harmless.
func (e *Engine) RunPass(ctx context.Context) Summary {
	if !e.mu.TryLock() {
		log.Println("dispatch: pass already running, skipping")
		return Summary{}
	}
	defer e.mu.Unlock()

	var summary Summary

	userIDs, err := e.creds.ListUserIDs(ctx)
	if err != nil {
		log.Printf("dispatch: unable to list users: %v", err)
		summary.Errors++
		return summary
	}

	var wg sync.WaitGroup
	var resMu sync.Mutex
	semaphore := make(chan struct{}, e.concurrency)

	for _, userID := range userIDs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(userID string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer func() {
				if p := recover(); p != nil {
					log.Printf("dispatch: panic processing user %s: %v", userID, p)
					resMu.Lock()
					summary.Errors++
					resMu.Unlock()
				}
			}()

			us := e.processUser(ctx, userID)
			if us.Err != nil {
				log.Printf("dispatch: user %s: %v", userID, us.Err)
			}
			if us.Sent > 0 || us.Failed > 0 || us.Skipped > 0 {
				log.Printf("dispatch: user %s sent=%d failed=%d skipped=%d", userID, us.Sent, us.Failed, us.Skipped)
			}

			resMu.Lock()
			summary.Users++
			summary.Sent += us.Sent
			summary.Failed += us.Failed
			summary.Skipped += us.Skipped
			if us.Err != nil {
				summary.Errors++
			}
			resMu.Unlock()
		}(userID)
	}

	wg.Wait()
	log.Printf("dispatch: pass complete users=%d sent=%d failed=%d skipped=%d errors=%d",
		summary.Users, summary.Sent, summary.Failed, summary.Skipped, summary.Errors)
	return summary
}

// processUser runs the full read-modify-write cycle for one user. The
// collection is read once, mutated in memory, and written back once at the
// end; if that final write fails the mutations are discarded and every
// affected post is retried on a later pass.
func (e *Engine) processUser(ctx context.Context, userID string) UserSummary {
	us := UserSummary{UserID: userID}
	now := e.now()

	cred, err := e.creds.Get(ctx, userID)
	if err != nil {
		us.Err = err
		return us
	}

	posts, err := e.posts.ListAll(ctx, userID)
	if err != nil {
		us.Err = err
		return us
	}

	// A post left in "sending" means a previous pass died between marking
	// and resolving it. Its submission outcome is unknown, so treat it as
	// not submitted and hand it back to the user.
	dirty := false
	for i := range posts {
		if posts[i].Status == models.PostStatusSending {
			posts[i].Status = models.PostStatusDraft
			posts[i].UpdatedAt = now
			dirty = true
		}
	}

	due := duePosts(posts, now)
	if len(due) == 0 {
		if dirty {
			if err := e.posts.ReplaceAll(ctx, userID, posts); err != nil {
				us.Err = err
			}
		}
		return us
	}

	accessToken := cred.AccessToken
	if cred.ExpiresAt.Sub(now) < refreshMargin {
		accessToken, err = e.refreshCredential(ctx, cred, now)
		if err != nil {
			// Never submit with a stale token. The due posts stay
			// scheduled and are retried once the user reconnects or a
			// later refresh succeeds.
			us.Err = err
			if dirty {
				if perr := e.posts.ReplaceAll(ctx, userID, posts); perr != nil {
					log.Printf("dispatch: user %s: persisting sending demotions: %v", userID, perr)
				}
			}
			return us
		}
	}

	byID := make(map[string]*models.Post, len(posts))
	for i := range posts {
		byID[posts[i].ID] = &posts[i]
	}

	for _, p := range due {
		var reply *transfer.TweetReply
		if p.ParentID != "" {
			parent, ok := byID[p.ParentID]
			if !ok || parent.Status != models.PostStatusSent {
				// Thread ordering outranks timing precision: the child
				// keeps its scheduled status and original time and is
				// retried once the parent has been sent.
				us.Skipped++
				continue
			}
			reply = &transfer.TweetReply{InReplyToTweetID: parent.PostedID}
		}

		tweet := &transfer.TweetRequest{Text: p.Content, Reply: reply}
		if len(p.MediaRefs) > 0 {
			tweet.Media = &transfer.TweetMedia{MediaIDs: p.MediaRefs}
		}

		// Transient while the submission is in flight; resolved to sent or
		// draft below, always before the collection is written.
		p.Status = models.PostStatusSending
		dirty = true

		postedID, err := e.client.SubmitPost(ctx, accessToken, tweet)
		if err != nil {
			log.Printf("dispatch: user %s post %s: %v", userID, p.ID, err)
			p.Status = models.PostStatusDraft
			p.UpdatedAt = now
			us.Failed++
			continue
		}

		p.Status = models.PostStatusSent
		p.PostedID = postedID
		p.UpdatedAt = now
		us.Sent++
	}

	if dirty {
		if err := e.posts.ReplaceAll(ctx, userID, posts); err != nil {
			us.Err = err
			return us
		}
	}
	return us
}

// duePosts selects every still-scheduled post whose time has come and orders
// the selection so thread parents are attempted before their children. The
// selection is deliberately not bounded below by the pass interval: a post
// missed during an outage is picked up by the next pass instead of being
// silently skipped, and re-sends are prevented by sent being terminal rather
// than by window arithmetic.
func duePosts(posts []models.Post, now time.Time) []*models.Post {
	var due []*models.Post
	for i := range posts {
		p := &posts[i]
		if p.Status != models.PostStatusScheduled || p.ScheduledFor == nil {
			continue
		}
		if p.ScheduledFor.After(now) {
			continue
		}
		due = append(due, p)
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].ThreadOrder != due[j].ThreadOrder {
			return due[i].ThreadOrder < due[j].ThreadOrder
		}
		return due[i].ScheduledFor.Before(*due[j].ScheduledFor)
	})
	return due
}

// refreshCredential swaps the token pair in one repository write before any
// submission happens, and returns the fresh access token.
func (e *Engine) refreshCredential(ctx context.Context, cred *models.Credential, now time.Time) (string, error) {
	if cred.RefreshToken == "" {
		return "", &xapi.AuthError{Message: "credential expiring and no refresh token stored"}
	}

	tokens, err := e.client.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return "", err
	}

	cred.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		cred.RefreshToken = tokens.RefreshToken
	}
	cred.ExpiresAt = now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
	cred.UpdatedAt = now

	if err := e.creds.Put(ctx, cred); err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}
