package mqttbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// historyMessage is the payload published on the history topics.
type historyMessage struct {
	Equipment   string          `json:"equipo"`
	Temperature json.RawMessage `json:"temperatura"`
	Timestamp   *float64        `json:"timestamp"` // unix seconds
}

// HandleMessage routes one inbound message by topic. Bad payloads are
// logged and dropped; nothing here returns an error to the client library.
func (b *Bridge) HandleMessage(ctx context.Context, topic string, payload []byte) {
	switch {
	case TopicMatches(b.opts.HistoryTopic, topic):
		b.metrics.MessageReceived("history")
		b.handleHistory(ctx, topic, payload)
	case TopicMatches(b.opts.RealtimeTopic, topic):
		b.metrics.MessageReceived("realtime")
		b.handleRealtime(topic, payload)
	default:
		b.metrics.MessageReceived("other")
		b.log.Debugw("mqtt_topic_ignored", "topic", topic)
	}
}

func (b *Bridge) handleHistory(ctx context.Context, topic string, payload []byte) {
	var msg historyMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.reject(topic, "invalid_json", err)
		return
	}
	if strings.TrimSpace(msg.Equipment) == "" {
		b.reject(topic, "missing_equipment", nil)
		return
	}
	temp, err := parseTemperature(msg.Temperature)
	if err != nil {
		b.log.Infow("history_reading_ignored", "equipment", msg.Equipment, "reason", err.Error())
		b.metrics.MessageRejected("invalid_temperature")
		return
	}
	if msg.Timestamp == nil || math.IsNaN(*msg.Timestamp) || math.IsInf(*msg.Timestamp, 0) {
		b.reject(topic, "invalid_timestamp", nil)
		return
	}
	ts := unixSeconds(*msg.Timestamp)

	if _, err := b.history.Save(ctx, msg.Equipment, temp, ts); err != nil {
		b.metrics.MessageRejected("store_error")
		b.log.Errorw("history_save_failed", "equipment", msg.Equipment, "error", err)
		return
	}
	b.metrics.ReadingSaved(msg.Equipment, temp)
	b.log.Debugw("history_saved", "equipment", msg.Equipment, "temperature", temp, "timestamp", ts)

	if b.alerts != nil {
		b.alerts.CheckAndNotify(ctx, msg.Equipment, temp)
	}
}

func (b *Bridge) handleRealtime(topic string, payload []byte) {
	if !json.Valid(payload) {
		b.reject(topic, "invalid_json", nil)
		return
	}
	b.mu.RLock()
	fn := b.realtime
	b.mu.RUnlock()
	if fn == nil {
		return
	}
	fn(payload)
	b.metrics.RealtimeForwarded()
}

func (b *Bridge) reject(topic, reason string, err error) {
	b.metrics.MessageRejected(reason)
	if err != nil {
		b.log.Warnw("mqtt_message_dropped", "topic", topic, "reason", reason, "error", err)
		return
	}
	b.log.Warnw("mqtt_message_dropped", "topic", topic, "reason", reason)
}

// parseTemperature accepts a JSON number or a numeric string. null, a
// missing field and non-finite values are rejected.
func parseTemperature(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("temperature missing")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return 0, fmt.Errorf("temperature %s is not numeric", s)
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, fmt.Errorf("temperature %q is not numeric", str)
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("temperature %v is not finite", v)
	}
	return v, nil
}

func unixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// TopicMatches reports whether topic matches an MQTT filter with + and #
// wildcards.
func TopicMatches(filter, topic string) bool {
	if filter == "" {
		return false
	}
	fp := strings.Split(filter, "/")
	tp := strings.Split(topic, "/")
	for i, f := range fp {
		if f == "#" {
			return true
		}
		if i >= len(tp) {
			return false
		}
		if f != "+" && f != tp[i] {
			return false
		}
	}
	return len(fp) == len(tp)
}
