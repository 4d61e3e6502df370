/*
Package schema models vector design templates and the placeholders inside
them.

A template is an SVG document exported from a design tool plus a schema.json
file naming its placeholders. Each placeholder key has the form
"<element>#<facet>", where the element part is an id in the SVG document and
the facet is either "text" (the element's text content), "href" (an image
element's source), or the name of an attribute to overwrite. Loading a
template resolves every placeholder against the document once, including the
inherited text style of every text slot, so that render-time lookups never
walk the document tree again.

A loaded Schema is immutable and safe to share between any number of
concurrent renders. The Registry type discovers templates in a directory and
supports reloading them at runtime.
*/
package schema
