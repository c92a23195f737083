// Package luaext runs user-installed language extensions written in Lua.
//
// An extension is a directory with an extension.yaml manifest and a main
// script, or a single .lua file. Scripts run in a sandboxed gopher-lua
// state and talk to the host through the langbridge module:
//
//	local lb = require("langbridge")
//
//	lb.registerHoverProvider("go", function(doc, pos)
//	  local word = doc.wordAt(pos)
//	  if word then return "**" .. word .. "**" end
//	end)
//
//	lb.registerCommand("acme.hello", function(name)
//	  lb.log("hello " .. tostring(name))
//	end)
//
// A rename provider refuses a rename by returning {rejectReason = "..."};
// Lua errors are reported as provider failures.
//
// Positions are {line = n, character = n} tables with zero-based members.
// Ranges are {start = pos, ["end"] = pos} or the shorthand {l1, c1, l2, c2}.
//
// Host loads extensions into the language feature bridge, the command
// registry and the diagnostics collection, and unloads everything an
// extension registered when it is reloaded or removed. Watcher reloads
// extensions when their files change.
package luaext
