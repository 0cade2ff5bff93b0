package eoscalc

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("eoscollect/scrapers/eoscalc")
