/*
The emoji package contains the pure parts of the emoji mirror: the index
types returned by Slack, alias resolution, and the diff between two indexes.

There are two kinds of index:
1) RawIndex -- The index exactly as returned by the `emoji.list` API. Targets
   are either URLs, or alias references of the form `alias:<name>`.
2) FlatIndex -- The same names with every alias replaced by the URL of the
   emoji it refers to. This is what gets diffed.

The RawIndex is what's persisted to disk, so that the next pass can rebuild
the FlatIndex that was mirrored last.
*/
package emoji
