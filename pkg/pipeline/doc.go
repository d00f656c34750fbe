/*
Package pipeline runs a source tree through an ordered list of middleware and
writes the result to a destination tree.

	+-----------+      +--------------+      +-----------+
	|  reader   | ---> |  middleware  | ---> |  writer   |
	| (source)  |      | 0, 1, ... n  |      |  (dest)   |
	+-----------+      +--------------+      +-----------+

🔄 Flow:
1. The source tree is read into memory as a file.Files collection
2. Each middleware receives the whole collection, one at a time, in order
3. The final collection is written under the destination root

⚡ Rules:
- Middleware run sequentially and each sees the result of the previous one
- The first error stops the run and nothing is written
- All destination paths are validated before the first write
- Writing only adds or overwrites, stale destination files stay

📝 Middleware:
Anything with a Process(ctx, *file.Files) error method. MiddlewareFunc adapts
a plain function, Transform adapts one that cannot fail.
*/
package pipeline
