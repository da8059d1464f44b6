// Package services orchestrates the command lifecycle from natural-language
// input through classification, confirmation, execution and recording.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// Pipeline drives one request at a time through the lifecycle machine. Each
// Run call owns its request exclusively; concurrent Runs share only the
// history store, which serializes its own writes.
type Pipeline struct {
	Translator ports.Translator
	Classifier ports.RiskClassifier
	Executor   ports.CommandExecutor
	Detector   ports.ContextDetector
	Prompter   ports.ConfirmationPrompter
	Store      ports.HistoryStore
	Cache      ports.TranslationCache
	Logger     ports.Logger
	Session    domain.SessionConfig
}

// Run processes a single request to a terminal state. Exactly one history
// entry is recorded for every run that reaches classification; a storage
// fault degrades to LoggingFailed instead of aborting the interaction.
func (p *Pipeline) Run(ctx context.Context, req domain.CommandRequest) (domain.SessionResult, error) {
	if p.Classifier == nil || p.Executor == nil || p.Store == nil || p.Logger == nil {
		return domain.SessionResult{}, errors.New("services.Pipeline dependencies not satisfied")
	}
	if !req.Direct && p.Translator == nil {
		return domain.SessionResult{}, errors.New("services.Pipeline translator not configured")
	}

	req = p.normalize(req)
	result := domain.SessionResult{State: domain.StateReceived}

	snapshot := domain.ContextSnapshot{
		WorkingDir: req.WorkingDir,
		Shell:      os.Getenv("SHELL"),
		User:       os.Getenv("USER"),
	}
	if p.Detector != nil {
		snapshot = p.Detector.Snapshot(req.WorkingDir)
	}
	if req.ContextTag == "" {
		req.ContextTag = snapshot.PrimaryTag()
	}

	command, fromCache, err := p.resolveCommand(ctx, &result, req, snapshot)
	if err != nil {
		p.finalize(&result, req, "", domain.OutcomeError, nil, 0)
		result.State = domain.StateRecordedFailure
		return result, err
	}
	result.Command = command
	result.FromCache = fromCache

	assessment, fault := p.classify(command)
	if fault != nil {
		p.Logger.Error("classifier fault, rejecting command", fault, map[string]interface{}{
			"command": command,
		})
		result.State = domain.StateRejected
		result.Message = "command rejected: risk assessment unavailable"
		p.finalize(&result, req, command, domain.OutcomeRejected, nil, 0)
		return result, nil
	}
	result.Assessment = assessment
	result.State = domain.StateClassified

	approved, err := p.confirm(ctx, &result, assessment, command)
	if err != nil {
		result.State = domain.StateRejected
		p.finalize(&result, req, command, domain.OutcomeRejected, nil, 0)
		return result, err
	}
	if !approved {
		result.State = domain.StateRejected
		if result.Message == "" {
			result.Message = "command rejected"
		}
		p.finalize(&result, req, command, domain.OutcomeRejected, nil, 0)
		return result, nil
	}
	result.State = domain.StateConfirmed

	result.State = domain.StateExecuting
	execCtx := ctx
	if p.Session.ExecTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, p.Session.ExecTimeout)
		defer cancel()
	}
	execution, execErr := p.Executor.Run(execCtx, command, req.WorkingDir)
	result.Execution = &execution
	durationMS := execution.Duration.Milliseconds()

	if execErr != nil {
		result.State = domain.StateRecordedFailure
		p.finalize(&result, req, command, domain.OutcomeError, nil, durationMS)
		return result, execErr
	}

	exitCode := execution.ExitCode
	if exitCode == 0 {
		result.State = domain.StateRecordedSuccess
		p.finalize(&result, req, command, domain.OutcomeSuccess, &exitCode, durationMS)
	} else {
		result.State = domain.StateRecordedFailure
		p.finalize(&result, req, command, domain.OutcomeFailure, &exitCode, durationMS)
	}
	return result, nil
}

func (p *Pipeline) normalize(req domain.CommandRequest) domain.CommandRequest {
	if req.WorkingDir == "" {
		if p.Session.WorkingDir != "" {
			req.WorkingDir = p.Session.WorkingDir
		} else if wd, err := os.Getwd(); err == nil {
			req.WorkingDir = wd
		}
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	return req
}

// resolveCommand produces the candidate command: the raw input in direct
// mode, otherwise a cache hit or a fresh translation.
func (p *Pipeline) resolveCommand(ctx context.Context, result *domain.SessionResult, req domain.CommandRequest, snapshot domain.ContextSnapshot) (string, bool, error) {
	if req.Direct {
		return req.Input, false, nil
	}

	result.State = domain.StateTranslating
	key := ""
	if p.Cache != nil {
		key = p.Cache.Key(req.Input, snapshot.Tags)
		if command, ok := p.Cache.Get(key); ok {
			p.Logger.Debug("translation cache hit", map[string]interface{}{"key": key})
			return command, true, nil
		}
	}

	translateCtx := ctx
	if p.Session.TranslateTimeout > 0 {
		var cancel context.CancelFunc
		translateCtx, cancel = context.WithTimeout(ctx, p.Session.TranslateTimeout)
		defer cancel()
	}

	command, err := p.Translator.Translate(translateCtx, req.Input, snapshot)
	if err != nil {
		return "", false, err
	}
	if command == "" {
		return "", false, &domain.TranslationError{Provider: p.Translator.Name(), Err: errors.New("empty command")}
	}
	if p.Cache != nil {
		if err := p.Cache.Put(key, command); err != nil {
			p.Logger.Warn("translation cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return command, false, nil
}

// classify guards against a panicking rule table. A panic is converted to a
// fault and the command is rejected rather than executed unassessed.
func (p *Pipeline) classify(command string) (assessment domain.RiskAssessment, fault error) {
	defer func() {
		if r := recover(); r != nil {
			fault = fmt.Errorf("classifier panic: %v", r)
		}
	}()
	assessment = p.Classifier.Classify(command)
	return assessment, nil
}

// confirm gathers the approvals the assessment demands. High and critical
// tiers require two independent confirmations; a timeout or disabled
// prompter counts as a decline.
func (p *Pipeline) confirm(ctx context.Context, result *domain.SessionResult, assessment domain.RiskAssessment, command string) (bool, error) {
	if assessment.Tier == domain.TierSafe && p.Session.SkipSafeConfirm {
		return true, nil
	}

	result.State = domain.StateAwaitingConfirmation
	if p.Prompter == nil || !p.Prompter.Enabled() {
		result.Message = "command rejected: confirmation unavailable"
		return false, nil
	}

	needed := 1
	if assessment.RequiresDoubleConfirmation {
		needed = 2
	}
	for attempt := 1; attempt <= needed; attempt++ {
		approved, err := p.confirmWithTimeout(ctx, assessment, command, attempt)
		if err != nil {
			return false, err
		}
		if !approved {
			if attempt > 1 {
				result.Message = "command rejected on second confirmation"
			}
			return false, nil
		}
	}
	return true, nil
}

func (p *Pipeline) confirmWithTimeout(ctx context.Context, assessment domain.RiskAssessment, command string, attempt int) (bool, error) {
	type reply struct {
		approved bool
		err      error
	}
	// The buffer lets the prompter goroutine complete after a timeout or
	// cancellation. A reply that arrives late lands in the abandoned channel
	// and is discarded; it can never approve an already-declined command.
	replies := make(chan reply, 1)
	go func() {
		approved, err := p.Prompter.Confirm(assessment, command, attempt)
		replies <- reply{approved: approved, err: err}
	}()

	var timeout <-chan time.Time
	if p.Session.ConfirmTimeout > 0 {
		timer := time.NewTimer(p.Session.ConfirmTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-replies:
		return r.approved, r.err
	case <-timeout:
		p.Logger.Warn("confirmation timed out, treating as decline", map[string]interface{}{
			"command": command,
		})
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// finalize builds and records the single history entry for this run. It is
// called exactly once per terminal transition.
func (p *Pipeline) finalize(result *domain.SessionResult, req domain.CommandRequest, command string, outcome domain.Outcome, exitCode *int, durationMS int64) {
	entry := domain.HistoryEntry{
		ID:         uuid.NewString(),
		Input:      req.Input,
		Command:    command,
		RiskTier:   result.Assessment.Tier,
		Outcome:    outcome,
		ExitCode:   exitCode,
		DurationMS: durationMS,
		WorkingDir: req.WorkingDir,
		ContextTag: req.ContextTag,
		CreatedAt:  req.CreatedAt,
	}
	result.Entry = entry

	if err := p.Store.Record(entry); err != nil {
		result.LoggingFailed = true
		p.Logger.Error("history record failed", err, map[string]interface{}{
			"entry_id": entry.ID,
			"outcome":  string(outcome),
		})
	}
}
