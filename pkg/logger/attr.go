package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ItemID records the scheduled item identifier under the key "item_id".
func ItemID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("item_id", id)
}

// OwnerID records the owning user identifier under the key "owner_id".
func OwnerID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("owner_id", id)
}

// Platform records the target platform under the key "platform".
func Platform(platform string) slog.Attr {
	return slog.String("platform", platform)
}

// Status records an item status under the key "status".
func Status(status string) slog.Attr {
	return slog.String("status", status)
}
