package control

// reloadHooks is the global list of components that want to know
// when an operator pushes a config change. Store registers exactly
// one hook (reloadConfig) per process; a global list rather than a
// method on ConfigStore keeps cmd/objectd's SIGHUP handler decoupled
// from any particular Store instance.
var reloadHooks []func()

// RegisterReloadHook adds fn to the set invoked by TriggerHotReload.
func RegisterReloadHook(fn func()) {
	reloadHooks = append(reloadHooks, fn)
}

// TriggerHotReload runs every registered reload hook, called from
// cmd/objectd's SIGHUP handler.
func TriggerHotReload() {
	for _, fn := range reloadHooks {
		go fn()
	}
}
