package search

// DefaultWords is the vocabulary used when no words file is configured
var DefaultWords = []string{
	"array", "assert", "async", "await", "backoff", "benchmark", "binary",
	"bitmap", "branch", "buffer", "bytes", "cache", "callback", "canary",
	"cancel", "cat", "catalog", "catch", "cats", "channel", "checksum",
	"cipher", "client", "closure", "cluster", "commit", "compile", "concurrency",
	"config", "context", "cookie", "coroutine", "cursor", "daemon", "database",
	"deadlock", "debounce", "debug", "decode", "default", "deploy", "dequeue",
	"digest", "docker", "domain", "encode", "endpoint", "enqueue", "error",
	"event", "exception", "fallback", "fetch", "filter", "flag", "format",
	"future", "garbage", "generic", "getter", "goroutine", "graph", "handler",
	"hash", "header", "heap", "index", "inline", "interface", "iterator",
	"json", "kernel", "keyboard", "lambda", "latency", "linker", "listener",
	"lock", "logger", "loop", "map", "marshal", "memoize", "merge", "method",
	"middleware", "module", "mutex", "namespace", "network", "null", "object",
	"observable", "offset", "package", "panic", "parser", "paste", "pipeline",
	"pointer", "promise", "protocol", "proxy", "query", "queue", "race",
	"reader", "recursion", "reducer", "refactor", "reflect", "regex", "render",
	"request", "resolve", "response", "retry", "router", "runtime", "schema",
	"scheduler", "search", "select", "semaphore", "session", "signal", "slice",
	"socket", "stack", "stream", "string", "struct", "subscribe", "switch",
	"syntax", "template", "thread", "throttle", "timeout", "timer", "token",
	"trait", "tree", "tuple", "typeahead", "unicode", "union", "unmarshal",
	"variable", "vector", "version", "waitgroup", "websocket", "worker",
	"writer", "yaml", "yield", "zero",
}
