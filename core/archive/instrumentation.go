package archive

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/koscakluka/ema-jarvis/core/archive"

var logger = otelslog.NewLogger(scopeName)
