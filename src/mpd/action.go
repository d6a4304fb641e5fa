package mpd

// job is one unit of work sent to the connection manager's goroutine. Each
// exported Handle method builds one closure that runs against the live
// service and reports its result back over respond, then hands it to the
// manager's action channel.
//
// The original action protocol modeled every operation as a variant of one
// large enum matched inside the manager loop. Go has no sum types, and a
// reimplementation via a tagged struct with 20-odd optional fields would
// only separate data from behavior for no benefit; a closure keeps each
// operation's request, dispatch and response in one place while still
// crossing the same single channel the manager selects on.
type job struct {
	run func(svc *service)
}

// CoverArtKind and QueueSource are shared between the service and handle
// layers; they're defined in service.go next to the code that interprets
// them.
