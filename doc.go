/*
Package cfddns keeps Cloudflare "A" records pointed at the caller's public IP address.

Usage starts with [LoadConfig], which reads the list of zones to manage,
followed by [New] and [Client.Run].
On the first run LoadConfig writes a placeholder file and returns [ErrConfigNotFound];
the program should exit and be run again once the file has been filled out.

The public IP is looked up at most once per [PublicIPResolver],
so any number of zones can be reconciled against a single lookup.
*/
package cfddns
