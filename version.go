package mobsquid

// Version is the SDK build identifier attached to every event. It can be
// overridden at link time with -ldflags "-X github.com/mobsquid/mobsquid-go.Version=...".
var Version = "0.4.0"
