/*

Process of compilation

Assembly Listing (text or json) ->
	parse ->
Intermediate Representation (ir) with atomic placeholders ->
	live ->
Live-in sets per block ->
	expand ->
LL/SC loops, live-in sets updated per split ->
	format ->
Assembly Listing

*/
package compiler
