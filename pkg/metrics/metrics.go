// Package metrics holds the prometheus collectors shared by the chat pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMCalls counts provider calls by provider, mode ("stream"/"complete") and status.
	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "llm_calls_total",
			Help:      "Total LLM provider calls",
		},
		[]string{"provider", "mode", "status"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "advisor",
			Name:      "llm_duration_seconds",
			Help:      "Duration of LLM provider calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"provider", "mode"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "tool_calls_total",
			Help:      "Total tool calls executed, by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	// ChatTurns counts finished turns by path ("stream", "fallback", "complete", "local")
	// and terminal state ("done", "failed", "cancelled", "unconfigured").
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "chat_turns_total",
			Help:      "Total chat turns by path and terminal state",
		},
		[]string{"path", "state"},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "advisor",
			Name:      "chat_streams_active",
			Help:      "Number of chat event streams currently open",
		},
	)
)
