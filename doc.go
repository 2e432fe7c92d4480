// Package legacygfx is the rendering backend of a legacy 2D game engine,
// built on [Ebitengine].
//
// It keeps the engine's original drawing model intact: sprites live in
// static atlas pages or dynamic surfaces addressed by integer ids, draws are
// queued and flushed in batches, and cameras are fixed-function style
// model/view/projection matrices plus legacy "views".
//
// # Quick start
//
// Create a device, a platform and a [Renderer], upload the atlases once,
// then issue draw calls and end every step with [Renderer.Finish]:
//
//	cfg := legacygfx.DefaultConfig()
//	dev, _ := legacygfx.NewEbitenDevice(cfg.Width, cfg.Height)
//	plat := legacygfx.NewEbitenPlatform(dev, cfg.Title)
//	r, _ := legacygfx.New(dev, plat, cfg)
//	r.BuildAtlases(pages, sprites)
//
//	plat.Run(func() error {
//		r.DrawSprite(hero, 100, 100, 1, 1, 0, legacygfx.ColourWhite, 1)
//		return r.Finish(cfg.Width, cfg.Height, cfg.ClearColour)
//	})
//
// For servers, replays and tests use [HeadlessDevice] with
// [HeadlessPlatform]: uploads, blits, clears and read-backs work on real
// pixels, and draws are recorded.
//
// # Resources
//
// Ids below [Renderer.StockAtlasCount] are atlas pages created by
// [Renderer.BuildAtlases]; they are never freed. Surfaces created later take
// the lowest free id. A deleted surface leaves its [AtlasRef] values stale;
// drawing one is silently skipped.
//
// # Batching
//
// Quads accumulate until the atlas, blend mode, filter, transform, target or
// viewport changes, or the frame ends. Every such change submits the queue
// as one device draw first, so a batch never mixes state.
//
// # Coordinates
//
// World coordinates have a top-left origin with Y down. Devices follow
// OpenGL window conventions: viewports use a bottom-left origin on the back
// buffer, and surfaces store rows in upload order. The renderer compensates
// for both, flipping the projection when a surface is the target and the
// view port when the back buffer is.
//
// # Logging
//
// Nothing is logged by default. Install a [log/slog] logger with
// [SetLogger]; set [Config.Debug] for per-frame batching statistics.
//
// [Ebitengine]: https://ebitengine.org
package legacygfx
