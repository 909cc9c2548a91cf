package log

import "log/slog"

func FlowID[T ~string](id T) slog.Attr {
	return slog.String("flow_id", string(id))
}

func FlowType[T ~string](kind T) slog.Attr {
	return slog.String("flow_type", string(kind))
}

func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

func Target(url string) slog.Attr {
	return slog.String("target", url)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
