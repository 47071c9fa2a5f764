package accountsync

import (
	"context"
	"errors"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/eventbus"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/syncerr"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// step is a state of the run loop.
type step int

const (
	stepResolve step = iota
	stepOpenSession
	stepFetch
	stepCloseSession
	stepUpdateTip
	stepDone
)

func (s step) String() string {
	switch s {
	case stepResolve:
		return "resolve"
	case stepOpenSession:
		return "open_session"
	case stepFetch:
		return "fetch"
	case stepCloseSession:
		return "close_session"
	case stepUpdateTip:
		return "update_tip"
	default:
		return "done"
	}
}

// runState is the mutable context of one run, threaded through the steps.
type runState struct {
	run      *Run
	keychain *chain.AddressSet
	state    State
	tip      operation.Block
	session  string

	previouslyEmpty bool
	page            int
	rewinds         int
	newOperations   int
}

// persistence classifies a store failure, keeping errors that are already
// classified untouched.
func persistence(err error, msg string) error {
	var classified *syncerr.Error
	if errors.As(err, &classified) {
		return err
	}

	return syncerr.Persistence(err, "%s", msg)
}

func (s *Synchronizer[T]) execute(ctx context.Context, run *Run) {
	started := s.cfg.clock()

	ctx = logger.Derive(ctx, "account.uid", run.Account.UID, "sync.run_id", run.ID, "sync.synchronizer", s.cfg.name)
	ctx, span := s.telemetry.tracer.Start(ctx, "accountsync.run", trace.WithAttributes(
		attribute.String("account.uid", run.Account.UID),
		attribute.String("sync.run_id", run.ID),
		attribute.String("sync.synchronizer", s.cfg.name),
	))
	defer span.End()

	logger.Info(ctx, "synchronization started")
	s.emit(ctx, run, eventbus.TypeSyncStarted, nil)

	rs := &runState{run: run}
	err := s.loop(ctx, rs)

	result := Result{
		NewOperations:   rs.newOperations,
		LastBlockHeight: rs.state.LastBlockHeight,
		Duration:        s.cfg.clock().Sub(started),
	}

	if err != nil {
		if rs.session != "" {
			s.killSession(ctx, rs)
		}

		code, msg := syncerr.Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)

		logger.Error(ctx, "synchronization failed", "error", err, "error.code", code)
		s.emit(ctx, run, eventbus.TypeSyncFailed, map[string]any{
			eventbus.KeyErrorCode:    string(code),
			eventbus.KeyErrorCodeInt: code.Int(),
			eventbus.KeyErrorMessage: msg,
		})
		s.telemetry.record(ctx, s.cfg.name, "failed", rs.newOperations, result.Duration)
	} else {
		typ := eventbus.TypeSyncSucceed
		if rs.previouslyEmpty && rs.newOperations > 0 {
			typ = eventbus.TypeSyncSucceedOnPreviouslyEmptyAccount
		}

		logger.Info(ctx, "synchronization succeeded",
			"sync.new_operations", result.NewOperations,
			"sync.last_block_height", result.LastBlockHeight,
			"sync.duration", result.Duration,
		)
		s.emit(ctx, run, typ, map[string]any{
			eventbus.KeyDurationMS:      result.Duration.Milliseconds(),
			eventbus.KeyNewOperations:   result.NewOperations,
			eventbus.KeyLastBlockHeight: result.LastBlockHeight,
		})
		s.telemetry.record(ctx, s.cfg.name, "succeeded", rs.newOperations, result.Duration)
	}

	s.mu.Lock()
	delete(s.inflight, run.Account.UID)
	s.mu.Unlock()

	run.result, run.err = result, err
	run.bus.Close()
	close(run.done)
}

func (s *Synchronizer[T]) loop(ctx context.Context, rs *runState) error {
	current := stepResolve
	for current != stepDone {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := s.advance(ctx, current, rs)
		if err != nil {
			logger.Debug(ctx, "synchronization step failed", "sync.step", current.String())
			return err
		}

		current = next
	}

	return nil
}

func (s *Synchronizer[T]) advance(ctx context.Context, current step, rs *runState) (step, error) {
	switch current {
	case stepResolve:
		return s.resolve(ctx, rs)
	case stepOpenSession:
		return s.openSession(ctx, rs)
	case stepFetch:
		return s.fetch(ctx, rs)
	case stepCloseSession:
		s.killSession(ctx, rs)
		return stepUpdateTip, nil
	case stepUpdateTip:
		return s.updateTip(ctx, rs)
	default:
		return stepDone, nil
	}
}

// resolve loads everything the run needs before the first page: the
// keychain, the saved state and the chain tip.
func (s *Synchronizer[T]) resolve(ctx context.Context, rs *runState) (step, error) {
	uid := rs.run.Account.UID

	addresses, err := s.keychains.Addresses(ctx, uid)
	if err != nil {
		return stepDone, persistence(err, "load keychain")
	}

	rs.keychain = chain.NewAddressSet(s.codec.NormalizeAddress, addresses...)

	if rs.state, err = s.store.LoadState(ctx, uid, s.cfg.name); err != nil {
		return stepDone, persistence(err, "load saved state")
	}

	if fingerprint := rs.keychain.Fingerprint(); rs.state.Keychain != fingerprint {
		if !rs.state.Cursor.IsZero() {
			logger.Info(ctx, "keychain changed since the last run, restarting from genesis", "sync.cursor", rs.state.Cursor)
			rs.state.Cursor = chain.Cursor{}
		}

		rs.state.Keychain = fingerprint
	}

	count, err := s.store.CountOperations(ctx, uid)
	if err != nil {
		return stepDone, persistence(err, "count operations")
	}
	rs.previouslyEmpty = count == 0

	if rs.tip, err = s.explorer.GetCurrentBlock(ctx); err != nil {
		return stepDone, err
	}

	logger.Debug(ctx, "synchronization resolved",
		"keychain.size", rs.keychain.Len(),
		"sync.cursor", rs.state.Cursor,
		"chain.tip", rs.tip.Height,
	)

	return stepOpenSession, nil
}

func (s *Synchronizer[T]) openSession(ctx context.Context, rs *runState) (step, error) {
	session, err := s.explorer.StartSession(ctx)
	if err != nil {
		return stepDone, err
	}

	rs.session = session
	return stepFetch, nil
}

// killSession closes the explorer session. It runs on every exit path, so
// it uses a context that survives the run's cancellation.
func (s *Synchronizer[T]) killSession(ctx context.Context, rs *runState) {
	if rs.session == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.explorer.KillSession(ctx, rs.session); err != nil {
		logger.Warn(ctx, "failed to close explorer session", "error", err)
	}

	rs.session = ""
}

// fetch requests the page at the current cursor, persists it and decides
// whether another page follows.
func (s *Synchronizer[T]) fetch(ctx context.Context, rs *runState) (step, error) {
	rs.page++
	cursor := rs.state.Cursor

	ctx, span := s.telemetry.tracer.Start(ctx, "accountsync.page", trace.WithAttributes(
		attribute.Int("sync.page", rs.page),
		attribute.Int64("sync.cursor.offset", int64(cursor.Offset)),
		attribute.String("sync.cursor.block_hash", cursor.BlockHash),
	))
	defer span.End()

	bulk, err := s.explorer.GetTransactions(ctx, rs.keychain.Addresses(), cursor, rs.session)
	if errors.Is(err, syncerr.ErrAnchorBlockNotFound) && rs.rewinds < s.cfg.maxRewinds {
		rs.rewinds++
		logger.Warn(ctx, "anchor block vanished, restarting from genesis", "sync.cursor", cursor)
		span.AddEvent("anchor block vanished")

		rs.state.Cursor = chain.Cursor{}
		return stepFetch, nil
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stepDone, err
	}

	if bulk.HasNext && bulk.Next == cursor {
		return stepDone, syncerr.API(0, "pagination did not advance past the current cursor")
	}

	batch, grown, err := s.interpret(ctx, rs, bulk)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stepDone, err
	}

	inserted, err := s.store.Commit(ctx, batch)
	if err != nil {
		err = persistence(err, "commit batch")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stepDone, err
	}

	rs.state = batch.State
	rs.newOperations += len(inserted)

	for _, b := range batch.Blocks {
		s.emit(ctx, rs.run, eventbus.TypeNewBlock, map[string]any{
			eventbus.KeyHash:   b.Hash,
			eventbus.KeyHeight: b.Height,
		})
	}

	for _, op := range inserted {
		s.emit(ctx, rs.run, eventbus.TypeNewOperation, map[string]any{
			eventbus.KeyUID:    op.UID,
			eventbus.KeyType:   string(op.Type),
			eventbus.KeyTxHash: op.TxHash,
		})
	}

	s.emit(ctx, rs.run, eventbus.TypeSyncProgress, map[string]any{
		eventbus.KeyPage:          rs.page,
		eventbus.KeyNewOperations: len(inserted),
		eventbus.KeyCursor:        batch.State.Cursor,
	})

	span.SetAttributes(
		attribute.Int("sync.transactions", len(bulk.Transactions)),
		attribute.Int("sync.operations.inserted", len(inserted)),
	)
	logger.Debug(ctx, "page committed",
		"sync.page", rs.page,
		"sync.transactions", len(bulk.Transactions),
		"sync.operations", len(batch.Operations),
		"sync.operations.inserted", len(inserted),
	)

	if bulk.HasNext || grown {
		return stepFetch, nil
	}

	return stepCloseSession, nil
}

// interpret turns a page into a batch. Transactions are interpreted in page
// order and addresses they make part of the account are watched, and saved,
// before the next transaction is interpreted.
//
// Pages fetched so far only covered the previous keychain, so when the page
// grows it the batch cursor goes back to genesis and grown is reported. The
// next pages then fetch the history of the new addresses too; operations
// already stored are skipped by uid.
func (s *Synchronizer[T]) interpret(ctx context.Context, rs *runState, bulk chain.Bulk[T]) (batch Batch, grown bool, err error) {
	account := rs.run.Account
	batch = Batch{
		AccountUID:   account.UID,
		Synchronizer: s.cfg.name,
	}

	seen := make(map[string]struct{})
	addBlock := func(b *operation.Block) {
		if b == nil || b.Hash == "" {
			return
		}

		if _, ok := seen[b.Hash]; ok {
			return
		}

		seen[b.Hash] = struct{}{}
		batch.Blocks = append(batch.Blocks, *b)
	}

	for _, tx := range bulk.Transactions {
		res, err := s.interpreter.Interpret(tx, rs.keychain)
		if err != nil {
			var classified *syncerr.Error
			if errors.As(err, &classified) {
				return Batch{}, false, err
			}

			return Batch{}, false, syncerr.Interpretation("%s", err.Error())
		}

		if added := rs.keychain.Add(res.Discovered...); len(added) > 0 {
			if err := s.keychains.AddAddresses(ctx, account.UID, added...); err != nil {
				return Batch{}, false, persistence(err, "extend keychain")
			}

			grown = true
			logger.Info(ctx, "keychain extended", "keychain.added", added)
		}

		addBlock(s.codec.BlockOf(tx))

		for _, d := range res.Drafts {
			addBlock(d.Block)

			op := d.Bind(account, operation.TrustPending)
			op.Trust = s.cfg.trust(op, rs.tip)
			batch.Operations = append(batch.Operations, op)
		}
	}

	last := rs.state.LastBlockHeight
	for _, b := range batch.Blocks {
		if b.Height > last {
			last = b.Height
		}
	}

	batch.State = State{
		Cursor:          bulk.Next,
		LastBlockHeight: last,
		UpdatedAt:       s.cfg.clock().UTC(),
		Keychain:        rs.keychain.Fingerprint(),
	}

	if grown {
		logger.Info(ctx, "keychain grew, restarting from genesis", "sync.cursor", bulk.Next)
		batch.State.Cursor = chain.Cursor{}
	}

	return batch, grown, nil
}

// updateTip stores the current chain tip once every page is persisted.
func (s *Synchronizer[T]) updateTip(ctx context.Context, rs *runState) (step, error) {
	tip, err := s.explorer.GetCurrentBlock(ctx)
	if err != nil {
		return stepDone, err
	}

	if err := s.store.UpsertBlock(ctx, tip); err != nil {
		return stepDone, persistence(err, "upsert current block")
	}

	rs.tip = tip
	s.emit(ctx, rs.run, eventbus.TypeNewBlock, map[string]any{
		eventbus.KeyHash:   tip.Hash,
		eventbus.KeyHeight: tip.Height,
	})

	return stepDone, nil
}

// emit appends an event to the run bus and forwards it to the publisher.
// Publishing failures are logged and never fail the run.
func (s *Synchronizer[T]) emit(ctx context.Context, run *Run, typ eventbus.Type, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}

	event := eventbus.Event{
		Type:       typ,
		AccountUID: run.Account.UID,
		RunID:      run.ID,
		Time:       s.cfg.clock().UTC(),
		Payload:    payload,
	}

	run.bus.Emit(event)

	if s.cfg.publisher == nil {
		return
	}

	if err := s.cfg.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn(ctx, "failed to publish event", "event.type", string(typ), "error", err)
	}
}
