package groups

import "context"

const waylandBundle = "wayland-egl-test_bundle.tar.gz"

func runGUIContainers(ctx context.Context, env *Env, s *suite) error {
	if env.Config.GUI.WaylandDisplay == "" {
		return &SkipError{Group: GUIContainers, Reason: SkipReasonNoDisplay}
	}
	s.debugf("using Wayland display %s", env.Config.GUI.WaylandDisplay)
	return runBundleContainer(ctx, env, s, GUIContainers, waylandBundle, "wayland-egl-test")
}
