package recon

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"meet-registration-portal/gateway"
	"meet-registration-portal/models"
	"meet-registration-portal/rules"
	"meet-registration-portal/store"
)

// State of one team's engine.
type State string

const (
	StateIdle State = "idle"
	// StateSyncing: a full fetch is in progress.
	StateSyncing State = "syncing"
	// StateLiveSubscribed: the change feed is attached.
	StateLiveSubscribed State = "live"
	// StateDegraded: subscription failed, the engine relies on periodic
	// flush-and-refetch instead.
	StateDegraded State = "degraded"
)

// Engine reconciles one team's view of the world: the canonical rows on the
// store server, the locally cached submitted rows, and whatever writes are
// still waiting in the pending queue. It never owns data — the store server
// holds the canonical copy, the local Store holds the cache — it only
// merges, and every local mutation is optimistic until the remote write
// lands or is queued.
type Engine struct {
	teamID string
	gw     gateway.Client
	local  *store.Store
	rules  *rules.Rules

	mu        sync.Mutex
	state     State
	submitted []models.Participant
	sub       gateway.Subscription

	// flushMu serializes FlushPending cycles. The flush worker, SubmitAll,
	// manual sync and engine startup can all trigger a flush at once; two
	// overlapping cycles would replay the same head entry twice and then
	// each dequeue one entry, dropping a write that never ran.
	flushMu sync.Mutex
}

func NewEngine(teamID string, gw gateway.Client, local *store.Store, r *rules.Rules) *Engine {
	return &Engine{
		teamID:    teamID,
		gw:        gw,
		local:     local,
		rules:     r,
		state:     StateIdle,
		submitted: local.LoadSubmitted(teamID),
	}
}

func (e *Engine) TeamID() string {
	return e.teamID
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Rows returns the merged display list, newest first.
func (e *Engine) Rows() []models.Participant {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Participant, len(e.submitted))
	copy(out, e.submitted)
	return out
}

// Start brings the engine up: full sync, change-feed attach, then a flush
// of anything left queued from a previous run. A failed subscription leaves
// the engine in degraded mode rather than failing startup.
func (e *Engine) Start(ctx context.Context) {
	if err := e.Sync(ctx); err != nil {
		log.Printf("⚠️ [RECON:%s] Initial sync failed: %v", e.teamID, err)
	}

	sub, err := e.gw.SubscribeToTeamChanges(ctx, e.teamID, func(ev models.ChangeEvent) {
		e.ApplyChange(context.Background(), ev)
	})
	e.mu.Lock()
	if err != nil {
		e.state = StateDegraded
		log.Printf("⚠️ [RECON:%s] Change feed unavailable, degraded polled mode: %v", e.teamID, err)
	} else {
		e.sub = sub
		e.state = StateLiveSubscribed
	}
	e.mu.Unlock()

	if _, err := e.FlushPending(ctx); err != nil {
		log.Printf("⚠️ [RECON:%s] Startup flush halted: %v", e.teamID, err)
	}
}

// Stop detaches the change feed; notifications after this are dropped.
func (e *Engine) Stop() {
	e.mu.Lock()
	sub := e.sub
	e.sub = nil
	e.state = StateIdle
	e.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Sync runs the full-fetch merge: canonical rows win by id, local rows with
// no canonical counterpart survive (they are pending or failed writes), and
// timestamp dedupes rows that never got an id. Result is sorted newest
// first and persisted as the new cache.
func (e *Engine) Sync(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateIdle {
		e.state = StateSyncing
	}
	e.mu.Unlock()

	canonical, err := e.gw.FetchTeamParticipants(ctx, e.teamID)
	if err != nil {
		return fmt.Errorf("fetch team %s: %w", e.teamID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	serverIDs := make(map[string]bool, len(canonical))
	seenTs := make(map[int64]bool, len(canonical))
	merged := make([]models.Participant, 0, len(canonical)+len(e.submitted))
	for _, row := range canonical {
		serverIDs[row.ID] = true
		seenTs[row.Timestamp.UnixNano()] = true
		merged = append(merged, row)
	}
	for _, row := range e.submitted {
		if row.ID != "" && serverIDs[row.ID] {
			continue // canonical copy wins
		}
		if seenTs[row.Timestamp.UnixNano()] {
			continue // same creation instant, keep the canonical row
		}
		seenTs[row.Timestamp.UnixNano()] = true
		merged = append(merged, row)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	e.submitted = merged
	e.local.SaveSubmitted(e.teamID, merged)
	return nil
}

// ApplyChange folds one change-feed event into the merged list. Deletes
// mark the row instead of removing it so the audit trail stays visible; an
// event the engine does not understand triggers a full refetch.
func (e *Engine) ApplyChange(ctx context.Context, ev models.ChangeEvent) {
	switch ev.Kind {
	case models.ChangeInsert, models.ChangeUpdate:
		e.mu.Lock()
		replaced := false
		for i, row := range e.submitted {
			if models.SameRow(row, ev.Row) {
				e.submitted[i] = ev.Row
				replaced = true
				break
			}
		}
		if !replaced {
			e.submitted = append([]models.Participant{ev.Row}, e.submitted...)
		}
		e.local.SaveSubmitted(e.teamID, e.submitted)
		e.mu.Unlock()

	case models.ChangeDelete:
		e.mu.Lock()
		for i, row := range e.submitted {
			if models.SameRow(row, ev.Row) {
				e.submitted[i].Status = models.StatusDeleted
				break
			}
		}
		e.local.SaveSubmitted(e.teamID, e.submitted)
		e.mu.Unlock()

	default:
		log.Printf("⚠️ [RECON:%s] Unrecognised change kind %q, refetching", e.teamID, ev.Kind)
		if err := e.Sync(ctx); err != nil {
			log.Printf("⚠️ [RECON:%s] Refetch after unknown change failed: %v", e.teamID, err)
		}
	}
}

// existingForValidation is the quota snapshot: submitted rows that still
// count (everything but Deleted) — drafts are appended by the caller.
func (e *Engine) existingForValidation() []models.Participant {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.Participant
	for _, row := range e.submitted {
		if row.Status != models.StatusDeleted {
			out = append(out, row)
		}
	}
	return out
}

// SubmitAll validates every draft against the submitted rows plus the other
// drafts in the batch and, if all pass, attempts a batched insert. A single
// validation failure aborts the whole batch with that failure's message.
// A remote failure queues the batch for retry and keeps the rows visible
// locally as Active; either way drafts are cleared and a flush + refetch
// run afterwards. The returned string is the user-visible outcome.
func (e *Engine) SubmitAll(ctx context.Context) (string, error) {
	drafts := e.local.LoadDrafts(e.teamID)
	if len(drafts) == 0 {
		return "", fmt.Errorf("no draft participants to submit")
	}

	base := e.existingForValidation()
	for i, d := range drafts {
		others := make([]models.Participant, 0, len(base)+len(drafts)-1)
		others = append(others, base...)
		others = append(others, drafts[:i]...)
		others = append(others, drafts[i+1:]...)
		if err := e.rules.Validate(d, others); err != nil {
			return "", fmt.Errorf("Validation failed: %s", err.Error())
		}
	}

	rows := make([]models.Participant, len(drafts))
	for i, d := range drafts {
		d.Status = models.StatusActive
		d.Sports = d.ChosenSports()
		if d.Timestamp.IsZero() {
			d.Timestamp = time.Now().UTC()
		}
		rows[i] = d
	}

	var message string
	inserted, err := e.gw.InsertParticipants(ctx, rows)
	if err != nil {
		// The write is preserved, the user still sees their rows.
		e.local.Enqueue(e.teamID, store.PendingWrite{
			Action:     store.ActionAppendBatch,
			Rows:       rows,
			EnqueuedAt: time.Now().UTC(),
		})
		e.mu.Lock()
		e.submitted = append(e.submitted, rows...)
		e.local.SaveSubmitted(e.teamID, e.submitted)
		e.mu.Unlock()
		message = "Error saving to server: " + err.Error()
		log.Printf("⚠️ [RECON:%s] Insert failed, batch of %d queued: %v", e.teamID, len(rows), err)
	} else {
		e.mu.Lock()
		for _, row := range inserted {
			replaced := false
			for i, existing := range e.submitted {
				if models.SameRow(existing, row) {
					e.submitted[i] = row
					replaced = true
					break
				}
			}
			if !replaced {
				e.submitted = append([]models.Participant{row}, e.submitted...)
			}
		}
		e.local.SaveSubmitted(e.teamID, e.submitted)
		e.mu.Unlock()
		message = "Saved to server!"
	}

	e.local.SaveDrafts(e.teamID, nil)

	flushed, flushErr := e.FlushPending(ctx)
	if flushErr != nil {
		log.Printf("⚠️ [RECON:%s] Post-submit flush halted: %v", e.teamID, flushErr)
	}
	if err := e.Sync(ctx); err != nil {
		log.Printf("⚠️ [RECON:%s] Post-submit refetch failed: %v", e.teamID, err)
	}
	if flushed > 0 {
		message += " Pending actions flushed."
	}
	return message, nil
}

// RequestDelete marks a row Requested locally right away, records the
// petition in the delete-request log, and tries the remote status update.
// A failed or impossible remote update (row has no id yet) lands in the
// pending queue instead.
func (e *Engine) RequestDelete(ctx context.Context, id string, timestamp time.Time, reason string) (string, error) {
	e.mu.Lock()
	var target *models.Participant
	for i := range e.submitted {
		row := &e.submitted[i]
		if (id != "" && row.ID == id) || (id == "" && row.ID == "" && row.Timestamp.Equal(timestamp)) {
			target = row
			break
		}
	}
	if target == nil {
		e.mu.Unlock()
		return "", fmt.Errorf("participant not found")
	}
	if target.Status == models.StatusRequested || target.Status == models.StatusDeleted {
		status := target.Status
		e.mu.Unlock()
		return fmt.Sprintf("Deletion already %s.", status), nil
	}
	if err := target.Transition(models.StatusRequested, false); err != nil {
		e.mu.Unlock()
		return "", err
	}
	row := *target
	e.local.SaveSubmitted(e.teamID, e.submitted)
	e.mu.Unlock()

	e.local.AppendDeleteRequest(models.DeleteRequest{
		ReqID:       "req_" + uuid.NewString(),
		RowID:       row.ID,
		TeamID:      e.teamID,
		Name:        row.Name,
		Timestamp:   row.Timestamp,
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
		Status:      models.DeleteReqPending,
	})

	if row.ID == "" {
		// Not on the server yet; apply once the row syncs.
		e.local.Enqueue(e.teamID, store.PendingWrite{
			Action:     store.ActionRequestDelete,
			Delete:     &store.DeleteIntent{TeamID: e.teamID, Timestamp: row.Timestamp, Name: row.Name, Reason: reason},
			EnqueuedAt: time.Now().UTC(),
		})
		return "Deletion requested locally; will apply on server after row sync.", nil
	}

	key := gateway.MatchKey{ID: row.ID}
	if _, err := e.gw.UpdateParticipantStatus(ctx, key, models.StatusRequested); err != nil {
		log.Printf("⚠️ [RECON:%s] Remote delete-request failed, queued: %v", e.teamID, err)
		e.local.Enqueue(e.teamID, store.PendingWrite{
			Action:     store.ActionRequestDelete,
			Delete:     &store.DeleteIntent{ID: row.ID, TeamID: e.teamID, Timestamp: row.Timestamp, Name: row.Name, Reason: reason},
			EnqueuedAt: time.Now().UTC(),
		})
		return "Deletion requested locally; will retry server update.", nil
	}

	if err := e.Sync(ctx); err != nil {
		log.Printf("⚠️ [RECON:%s] Refetch after delete-request failed: %v", e.teamID, err)
	}
	return "Deletion requested and saved on server.", nil
}

// FlushPending drains the team's queue strictly in order. An entry leaves
// the queue only after its remote write succeeds, with one exception: a
// write the store permanently rejected (4xx) is dropped with a log line,
// since replaying it can never succeed. The first transient failure halts
// the cycle and leaves the rest of the queue untouched, preserving the
// per-team happens-before order. Returns how many entries completed.
//
// Only one cycle runs per engine at a time. Under flushMu the queue head is
// stable (Enqueue only appends), so dequeuing the head always removes the
// entry this cycle just applied.
func (e *Engine) FlushPending(ctx context.Context) (int, error) {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	queue := e.local.LoadQueue(e.teamID)
	if len(queue) == 0 {
		return 0, nil
	}

	processed := 0
	for _, item := range queue {
		var err error
		switch item.Action {
		case store.ActionAppendBatch:
			_, err = e.gw.InsertParticipants(ctx, item.Rows)

		case store.ActionRequestDelete:
			if item.Delete == nil || (item.Delete.ID == "" && item.Delete.Timestamp.IsZero()) {
				log.Printf("⚠️ [RECON:%s] Delete intent missing id/timestamp, dropping", e.teamID)
				e.local.DequeueHead(e.teamID)
				continue
			}
			key := gateway.MatchKey{ID: item.Delete.ID}
			if key.ID == "" {
				key.TeamID = item.Delete.TeamID
				key.Timestamp = item.Delete.Timestamp
			}
			_, err = e.gw.UpdateParticipantStatus(ctx, key, models.StatusRequested)

		default:
			log.Printf("⚠️ [RECON:%s] Unknown pending action %q, dropping", e.teamID, item.Action)
			e.local.DequeueHead(e.teamID)
			continue
		}

		if err != nil {
			if gateway.IsPermanent(err) {
				log.Printf("❌ [RECON:%s] Store rejected queued %s permanently, dropping: %v", e.teamID, item.Action, err)
				e.local.DequeueHead(e.teamID)
				continue
			}
			return processed, fmt.Errorf("flush %s: %w", item.Action, err)
		}
		e.local.DequeueHead(e.teamID)
		processed++
	}

	if processed > 0 {
		if err := e.Sync(ctx); err != nil {
			log.Printf("⚠️ [RECON:%s] Refetch after flush failed: %v", e.teamID, err)
		}
	}
	return processed, nil
}

// Fee prices the team's current registration: active submitted rows
// (Requested and Deleted excluded) plus draft slots.
func (e *Engine) Fee() rules.Fee {
	drafts := e.local.LoadDrafts(e.teamID)
	e.mu.Lock()
	active := 0
	for _, row := range e.submitted {
		if row.Status != models.StatusDeleted && row.Status != models.StatusRequested {
			active++
		}
	}
	e.mu.Unlock()
	return e.rules.ComputeFee(active+len(drafts), e.teamID)
}
