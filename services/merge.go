package services

import (
	"time"
)

// MergeSource says which side won a progress merge.
type MergeSource string

const (
	MergeSourceLocal  MergeSource = "local"
	MergeSourceServer MergeSource = "server"
)

// MergeResult is the outcome of reconciling a client-held blob against the
// server-held one.
type MergeResult struct {
	Data      map[string]interface{} `json:"data"`
	Source    MergeSource            `json:"source"`
	Conflicts []string               `json:"conflicts"`
}

// MergeProgress reconciles local (client-held) and server progress blobs using
// last-write-wins on the supplied timestamps (unix millis). Server wins ties —
// it is the conservative default. A conflict note is recorded only when the
// losing side had a nonzero timestamp, i.e. actually had something to lose.
//
// The timestamps here only pick which blob survives; the server clock is still
// the sole source of the persisted updated_at. This is an MVP heuristic, not
// an exploit-proof merge — the app_transactions ledger exists for the latter.
func MergeProgress(local, server map[string]interface{}, localTS, serverTS int64) MergeResult {
	if local == nil {
		data := server
		if data == nil {
			data = map[string]interface{}{}
		}
		return MergeResult{Data: data, Source: MergeSourceServer, Conflicts: []string{}}
	}

	// First sync: nothing on the server yet.
	if server == nil {
		return MergeResult{Data: local, Source: MergeSourceLocal, Conflicts: []string{}}
	}

	if localTS < 0 {
		localTS = 0
	}
	if serverTS < 0 {
		serverTS = 0
	}

	if serverTS >= localTS {
		conflicts := []string{}
		if localTS > 0 {
			conflicts = append(conflicts, "local progress was overwritten by newer server data")
		}
		return MergeResult{Data: server, Source: MergeSourceServer, Conflicts: conflicts}
	}

	conflicts := []string{}
	if serverTS > 0 {
		conflicts = append(conflicts, "server progress was overwritten by newer local data")
	}
	return MergeResult{Data: local, Source: MergeSourceLocal, Conflicts: conflicts}
}

// DeepMergeProgress takes the "best" of each field from both blobs: numeric
// fields take the higher value, boolean unlocks OR together, arrays union,
// objects merge recursively. Anything else keeps the server value.
//
// Can create exploits for currency-like fields (refunded coins reappear), so
// callers must keep it away from spendable balances.
func DeepMergeProgress(local, server map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(server)+len(local))
	for k, v := range server {
		result[k] = v
	}

	for key, localVal := range local {
		serverVal, ok := server[key]
		if !ok {
			result[key] = localVal
			continue
		}

		switch lv := localVal.(type) {
		case float64:
			if sv, ok := serverVal.(float64); ok {
				if lv > sv {
					result[key] = lv
				}
			}
		case bool:
			if sv, ok := serverVal.(bool); ok {
				result[key] = lv || sv
			}
		case []interface{}:
			if sv, ok := serverVal.([]interface{}); ok {
				result[key] = unionValues(sv, lv)
			}
		case map[string]interface{}:
			if sv, ok := serverVal.(map[string]interface{}); ok {
				result[key] = DeepMergeProgress(lv, sv)
			}
		}
	}

	return result
}

// unionValues keeps server order, appends unseen local values. Only scalar
// comparability matters here (item ids, unlock names).
func unionValues(server, local []interface{}) []interface{} {
	seen := make(map[interface{}]struct{}, len(server))
	out := make([]interface{}, 0, len(server)+len(local))
	for _, v := range server {
		if isHashable(v) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
		}
		out = append(out, v)
	}
	for _, v := range local {
		if isHashable(v) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
		}
		out = append(out, v)
	}
	return out
}

func isHashable(v interface{}) bool {
	switch v.(type) {
	case string, float64, bool, nil:
		return true
	}
	return false
}

// timestampFields are the well-known names games use for their "last modified"
// marker inside the blob.
var timestampFields = []string{"updatedAt", "lastModified", "timestamp", "_timestamp"}

// ExtractTimestamp pulls a unix-millis timestamp out of a progress blob for
// merge decisions. Returns 0 when the blob carries none.
func ExtractTimestamp(data map[string]interface{}) int64 {
	if data == nil {
		return 0
	}
	for _, field := range timestampFields {
		switch v := data[field].(type) {
		case float64:
			return int64(v)
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}
