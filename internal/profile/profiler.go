// Package profile tracks per-model performance in Redis so the orchestrator
// can prefer healthy models and fail over away from degraded ones. Profiles
// survive restarts and are shared by every orchestrator instance pointed at
// the same Redis.
package profile

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Model availability states as stored in the profile hash.
const (
	StatusOnline   = "online"
	StatusDegraded = "degraded"
	StatusOffline  = "offline"
)

// ModelProfile tracks latency, reliability, and loop behavior for one model.
type ModelProfile struct {
	ModelID         string    `json:"model_id"`
	AvgLatencyMS    int64     `json:"avg_latency_ms"`
	AvgTurns        float64   `json:"avg_turns"`
	Status          string    `json:"status"`
	ErrorRate       float64   `json:"error_rate"`
	TotalSuccesses  int64     `json:"total_successes"`
	TotalFailures   int64     `json:"total_failures"`
	TotalToolCalls  int64     `json:"total_tool_calls"`
	LastHealthCheck time.Time `json:"last_health_check"`
}

// Healthy reports whether the model should receive new traffic.
func (p *ModelProfile) Healthy() bool {
	return p.Status == StatusOnline
}

// Profiler reads and writes model profiles in Redis.
type Profiler struct {
	rdb *redis.Client
}

func NewProfiler(rdb *redis.Client) *Profiler {
	return &Profiler{rdb: rdb}
}

func (p *Profiler) profileKey(modelID string) string {
	return fmt.Sprintf("profile:%s", modelID)
}

// GetProfile retrieves a model's profile, creating a default one if it
// doesn't exist yet.
func (p *Profiler) GetProfile(ctx context.Context, modelID string) (*ModelProfile, error) {
	key := p.profileKey(modelID)
	data, err := p.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return p.createDefaultProfile(ctx, modelID)
	}

	profile := &ModelProfile{ModelID: modelID}
	profile.AvgLatencyMS, _ = strconv.ParseInt(data["avg_latency_ms"], 10, 64)
	profile.AvgTurns, _ = strconv.ParseFloat(data["avg_turns"], 64)
	profile.Status = data["status"]
	profile.ErrorRate, _ = strconv.ParseFloat(data["error_rate"], 64)
	profile.TotalSuccesses, _ = strconv.ParseInt(data["total_successes"], 10, 64)
	profile.TotalFailures, _ = strconv.ParseInt(data["total_failures"], 10, 64)
	profile.TotalToolCalls, _ = strconv.ParseInt(data["total_tool_calls"], 10, 64)
	profile.LastHealthCheck, _ = time.Parse(time.RFC3339Nano, data["last_health_check"])
	return profile, nil
}

func (p *Profiler) createDefaultProfile(ctx context.Context, modelID string) (*ModelProfile, error) {
	profile := &ModelProfile{
		ModelID:         modelID,
		AvgLatencyMS:    2000, // Start with a reasonable default latency.
		AvgTurns:        0,
		Status:          StatusOnline,
		TotalSuccesses:  0,
		TotalFailures:   0,
		TotalToolCalls:  0,
		ErrorRate:       0.0,
		LastHealthCheck: time.Now(),
	}

	key := p.profileKey(modelID)
	pipe := p.rdb.Pipeline()
	pipe.HSet(ctx, key, "model_id", profile.ModelID)
	pipe.HSet(ctx, key, "avg_latency_ms", profile.AvgLatencyMS)
	pipe.HSet(ctx, key, "avg_turns", profile.AvgTurns)
	pipe.HSet(ctx, key, "status", profile.Status)
	pipe.HSet(ctx, key, "total_successes", profile.TotalSuccesses)
	pipe.HSet(ctx, key, "total_failures", profile.TotalFailures)
	pipe.HSet(ctx, key, "total_tool_calls", profile.TotalToolCalls)
	pipe.HSet(ctx, key, "error_rate", profile.ErrorRate)
	pipe.HSet(ctx, key, "last_health_check", profile.LastHealthCheck.Format(time.RFC3339Nano))
	_, err := pipe.Exec(ctx)

	log.Printf("Created new profile for %s", modelID)
	return profile, err
}

// RecordSuccess folds one completed run into the model's profile.
// Latency and turns use an exponential moving average so a slow outlier
// does not dominate the profile.
func (p *Profiler) RecordSuccess(ctx context.Context, modelID string, latency time.Duration, turns, toolCalls int) {
	key := p.profileKey(modelID)
	const alpha = 0.1

	err := p.rdb.Watch(ctx, func(tx *redis.Tx) error {
		currentLatencyStr, err := tx.HGet(ctx, key, "avg_latency_ms").Result()
		if err != nil && err != redis.Nil {
			return err
		}
		currentLatency, _ := strconv.ParseInt(currentLatencyStr, 10, 64)
		newLatency := int64((alpha * float64(latency.Milliseconds())) + ((1.0 - alpha) * float64(currentLatency)))

		currentTurnsStr, err := tx.HGet(ctx, key, "avg_turns").Result()
		if err != nil && err != redis.Nil {
			return err
		}
		currentTurns, _ := strconv.ParseFloat(currentTurnsStr, 64)
		newTurns := (alpha * float64(turns)) + ((1.0 - alpha) * currentTurns)

		_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "avg_latency_ms", newLatency)
			pipe.HSet(ctx, key, "avg_turns", newTurns)
			return nil
		})
		return err
	}, key)
	if err != nil {
		log.Printf("Error updating averages for %s: %v", modelID, err)
	}

	pipe := p.rdb.Pipeline()
	successes := pipe.HIncrBy(ctx, key, "total_successes", 1)
	failures := pipe.HGet(ctx, key, "total_failures")
	pipe.HIncrBy(ctx, key, "total_tool_calls", int64(toolCalls))
	pipe.HSet(ctx, key, "status", StatusOnline)

	_, err = pipe.Exec(ctx)
	if err != nil {
		log.Printf("Error in success update pipeline for %s: %v", modelID, err)
		return
	}

	totalFailures, _ := strconv.ParseInt(failures.Val(), 10, 64)
	p.refreshErrorRate(ctx, key, successes.Val(), totalFailures)
}

// RecordFailure marks the model degraded and updates its error rate.
func (p *Profiler) RecordFailure(ctx context.Context, modelID string) {
	key := p.profileKey(modelID)
	pipe := p.rdb.Pipeline()
	failures := pipe.HIncrBy(ctx, key, "total_failures", 1)
	successes := pipe.HGet(ctx, key, "total_successes")
	pipe.HSet(ctx, key, "status", StatusDegraded)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("Error in failure update pipeline for %s: %v", modelID, err)
		return
	}

	totalSuccesses, _ := strconv.ParseInt(successes.Val(), 10, 64)
	p.refreshErrorRate(ctx, key, totalSuccesses, failures.Val())
}

func (p *Profiler) refreshErrorRate(ctx context.Context, key string, successes, failures int64) {
	total := successes + failures
	if total > 0 {
		p.rdb.HSet(ctx, key, "error_rate", float64(failures)/float64(total))
	}
}

// RecordHealthCheck updates status based on a proactive check. It ensures a
// full profile exists before writing, so the health checker never creates a
// partial profile hash.
func (p *Profiler) RecordHealthCheck(ctx context.Context, modelID string, isHealthy bool) {
	if _, err := p.GetProfile(ctx, modelID); err != nil {
		log.Printf("Error ensuring profile exists during health check for %s: %v", modelID, err)
	}

	key := p.profileKey(modelID)
	status := StatusOffline
	if isHealthy {
		status = StatusOnline
	}

	pipe := p.rdb.Pipeline()
	pipe.HSet(ctx, key, "status", status)
	pipe.HSet(ctx, key, "last_health_check", time.Now().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error updating health check for %s: %v", modelID, err)
	}
}
