package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/tool-orchestrator/internal/agent"
	"github.com/dileep-u-k/tool-orchestrator/internal/api"
	"github.com/dileep-u-k/tool-orchestrator/internal/llm"
	"github.com/dileep-u-k/tool-orchestrator/internal/policy"
	"github.com/dileep-u-k/tool-orchestrator/internal/profile"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
	cacheversion "github.com/dileep-u-k/tool-orchestrator/internal/version"
)

// OrchestratorHandler serves the public ask endpoint. Each request gets its
// own agent loop; the handler owns only the shared services around it
// (model clients, profiler, answer cache, tool transport).
type OrchestratorHandler struct {
	clients    map[string]llm.Client
	profiler   *profile.Profiler
	policy     *policy.Engine
	toolClient tip.Client
	config     *AppConfig
	rdb        *redis.Client
}

func NewOrchestratorHandler(clients map[string]llm.Client, profiler *profile.Profiler, policyEngine *policy.Engine, toolClient tip.Client, config *AppConfig, rdb *redis.Client) *OrchestratorHandler {
	return &OrchestratorHandler{
		clients:    clients,
		profiler:   profiler,
		policy:     policyEngine,
		toolClient: toolClient,
		config:     config,
		rdb:        rdb,
	}
}

func (h *OrchestratorHandler) HandleAsk(c *gin.Context) {
	startTime := time.Now()
	var req api.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	requestID := uuid.NewString()
	log.Printf("--- New Request %s (Model: %s, Prompt: '%.40s...') ---", requestID, req.Model, req.Prompt)

	cacheKey := cacheversion.GenerateVersionedCacheKey("anscache", req.Prompt)
	if cachedVal, err := h.rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
		var cachedResp api.AskResponse
		if json.Unmarshal([]byte(cachedVal), &cachedResp) == nil {
			log.Printf("✅ [%s] Cache HIT", requestID)
			cachedResp.RequestID = requestID
			cachedResp.LatencyMS = time.Since(startTime).Milliseconds()
			cachedResp.CacheStatus = "HIT"
			c.JSON(http.StatusOK, cachedResp)
			return
		}
	}
	log.Printf("⚠️ [%s] Cache MISS", requestID)

	modelID, failoverInfo := h.determineModelID(c, req.Model)
	client, ok := h.clients[modelID]
	if !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: fmt.Sprintf("model '%s' is not enabled", modelID)})
		return
	}

	loop, err := agent.New(agent.Config{
		Model:           client,
		Tools:           h.toolClient,
		Policy:          h.policy,
		MaxTurns:        h.config.Settings.Loop.MaxTurns,
		ModelTimeout:    h.config.Settings.ModelTimeout(),
		CorrectionLimit: h.config.Settings.Loop.CorrectionLimit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := loop.Run(c.Request.Context(), req.Prompt)
	if err != nil {
		h.profiler.RecordFailure(c.Request.Context(), modelID)
		var fe *agent.FailureError
		if errors.As(err, &fe) {
			status := http.StatusBadGateway
			if fe.Reason == agent.FailureModelTimeout || fe.Reason == agent.FailureToolTimeout {
				status = http.StatusGatewayTimeout
			}
			c.JSON(status, api.ErrorResponse{Error: fe.Error(), Reason: string(fe.Reason)})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	latency := time.Since(startTime)
	h.profiler.RecordSuccess(c.Request.Context(), modelID, latency, result.Turns, len(result.ToolCalls))

	for _, call := range result.ToolCalls {
		log.Printf("🔧 [%s] call %s: %s -> %s (forced=%v)", requestID, call.ID, call.Tool, call.Result.Status, call.Forced)
	}

	resp := api.AskResponse{
		RequestID:   requestID,
		Answer:      result.FinalText,
		ModelUsed:   modelID,
		Turns:       result.Turns,
		ToolCalls:   summarizeToolCalls(result.ToolCalls),
		LatencyMS:   latency.Milliseconds(),
		CacheStatus: "MISS",
		Failover:    failoverInfo,
	}

	if respBytes, err := json.Marshal(resp); err != nil {
		log.Printf("WARNING: Failed to marshal response for caching: %v", err)
	} else if err := h.rdb.Set(c.Request.Context(), cacheKey, respBytes, h.config.Settings.CacheTTL()).Err(); err != nil {
		log.Printf("WARNING: Failed to cache response: %v", err)
	} else {
		log.Println("✅ Response CACHED")
	}

	c.JSON(http.StatusOK, resp)
}

// determineModelID resolves the model serving this request. A pinned model
// that the profiler reports offline fails over to the first healthy enabled
// model; if nothing looks healthy the pinned model is used anyway, since a
// stale profile is a worse reason to refuse traffic than a failed attempt.
func (h *OrchestratorHandler) determineModelID(c *gin.Context, pinned string) (string, *api.FailoverInfo) {
	if pinned == "" {
		pinned = h.config.DefaultModel
	}

	prof, err := h.profiler.GetProfile(c.Request.Context(), pinned)
	if err != nil {
		log.Printf("WARNING: Could not read profile for %s: %v", pinned, err)
		return pinned, nil
	}
	if prof.Healthy() {
		return pinned, nil
	}

	for _, candidate := range h.config.EnabledModels {
		if candidate == pinned {
			continue
		}
		if _, ok := h.clients[candidate]; !ok {
			continue
		}
		candProf, err := h.profiler.GetProfile(c.Request.Context(), candidate)
		if err != nil || !candProf.Healthy() {
			continue
		}
		log.Printf("🔁 Failing over from %s to %s", pinned, candidate)
		return candidate, &api.FailoverInfo{
			OriginalModel: pinned,
			Reason:        fmt.Sprintf("Model '%s' was %s.", pinned, prof.Status),
		}
	}

	log.Printf("WARNING: No healthy fallback for %s, using it anyway.", pinned)
	return pinned, nil
}

func summarizeToolCalls(calls []agent.ToolCallRecord) []api.ToolCallSummary {
	out := make([]api.ToolCallSummary, 0, len(calls))
	for _, call := range calls {
		out = append(out, api.ToolCallSummary{
			ID:     call.ID,
			Tool:   call.Tool,
			Args:   call.Args,
			Status: string(call.Result.Status),
			Forced: call.Forced,
		})
	}
	return out
}
