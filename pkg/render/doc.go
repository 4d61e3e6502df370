/*
Package render turns a loaded template schema plus caller-supplied
placeholder values into pixels.

The pipeline is: Resolve merges caller values with the schema defaults into
a fully concrete substitution set; Apply writes that set into a private copy
of the template document; the document is then drawn onto a canvas and
rasterized at one pixel per SVG user unit. RenderOpaque pre-fills the canvas
with the template's declared background, RenderTranslucent rasterizes
against a transparent canvas and alpha-composites the result over a
caller-supplied background image.

Rendering is CPU-bound, performs no network I/O, and is deterministic:
identical inputs produce byte-identical output. The FontDB is the only other
shared resource and is read-only after loading.
*/
package render
