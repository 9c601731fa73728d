// Package frame tracks the per-scope bookkeeping for deferred actions.
//
// A Registry owns one stack of frames per execution context (the main
// script, or one generator activation). Every lexical scope that can host
// deferred actions (function body, block, loop-iteration body, switch
// body, module top level) is entered as a frame and exited in strict LIFO
// order. Deferred actions register into the innermost live frame.
//
// # Storage
//
// Logically every frame owns an independent action stack. Physically all
// frames in a registry share one action arena; each frame records only the
// arena index at its entry (the high-water mark). Taking a frame's actions
// truncates the arena back to that mark, which makes frame entry and exit
// O(1) with no per-frame allocation while preserving isolation exactly: a
// frame can only ever observe arena entries above its own mark.
//
// # Lifecycle
//
//	h := reg.EnterFrame(frame.KindBlock, false)
//	err := reg.RegisterAction(h, action, static)   // any number of times
//	acts, err := reg.Take(h)                       // exactly once
//	reg.ExitFrame(h)
//
// Take marks the frame dead; a second Take reports a frame_dead error.
// Registration performs the static validation the front end relies on:
// async actions outside an async context, escaping control transfers and
// yield inside the deferred body are rejected here, never at run time.
//
// # Iteration frames
//
// A loop-iteration frame is re-entered fresh on every iteration. Actions
// registered in iteration i are taken when that iteration's frame exits and
// are invisible to iteration i+1.
package frame
