// Package commands holds the commands extensions register and converts the
// commands they attach to results into wire commands.
//
// Commands without arguments travel by id. A command that carries arguments
// cannot be serialized faithfully, so the converter parks it in a table and
// sends a reference to the delegation command instead. Executing the
// delegation command with that reference runs the parked command with its
// original arguments. The parked entry lives until the result batch that
// produced it is released.
package commands
