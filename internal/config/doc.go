// Package config provides layered settings for textcodec.
//
// Settings come from several layers; higher layers override lower ones:
//
//	┌────────────────────────────────┐
//	│  session (Set, CLI flags)      │  ← highest
//	├────────────────────────────────┤
//	│  TEXTCODEC_* environment       │
//	├────────────────────────────────┤
//	│  <folder>/.textcodec/settings  │  ← only for files inside the folder
//	├────────────────────────────────┤
//	│  <workspace>/.textcodec/...    │
//	├────────────────────────────────┤
//	│  ~/.config/textcodec/settings  │
//	├────────────────────────────────┤
//	│  built-in defaults             │  ← lowest
//	└────────────────────────────────┘
//
// Each settings directory may hold settings.toml or settings.json (JSON with
// comments). Settings are either application scoped or resource scoped;
// folder layers only affect resource scoped settings such as
// files.encoding.
//
//	# ~/.config/textcodec/settings.toml
//	[files]
//	encoding = "windows1252"
//	autoGuessEncoding = true
//
//	[[files.encodingOverrides]]
//	extension = "sjs"
//	encoding = "shiftjis"
//
// FilePreferences adapts a Config to the encoding resolver's preference
// store, EncodingOverrides produces its override list, and BindOverrides
// keeps that list current in the resolver as settings change.
package config
