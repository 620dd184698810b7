package residency

import "github.com/rs/zerolog"

// ZerologPublisher forwards manager events to a structured logger. Activation
// and release traffic is logged at debug to keep steady-state output quiet;
// skips and rebinds are informational.
type ZerologPublisher struct {
	log zerolog.Logger
}

func NewZerologPublisher(l zerolog.Logger) *ZerologPublisher {
	return &ZerologPublisher{log: l}
}

func (p *ZerologPublisher) Publish(e Event) {
	var ev *zerolog.Event
	switch e.Name {
	case "iterate_skip", "instantiator_bound", "instantiator_unbound":
		ev = p.log.Info()
	default:
		ev = p.log.Debug()
	}
	ev = ev.Str("event", e.Name)
	if e.ID.Valid() {
		ev = ev.Uint32("asset_id", uint32(e.ID))
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("residency")
}
