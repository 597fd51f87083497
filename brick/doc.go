/*
	Package brick provides the core types for bricked volume data: the
	volume layout with its brick geometry arithmetic, element data types,
	compression codecs, the metadata document persisted with each volume,
	and logging.  This package has no I/O; storage backends live in the
	storage package and the read/write orchestration in the volume package.

	A volume is a dense N-dimensional array (1 to 6 dimensions) that is
	partitioned into fixed-size bricks.  Bricks are the unit of storage
	and compression.  Brick indices are linearized in row-major order
	with the last dimension varying fastest; this ordering is persisted
	in brick paths and must not change, or stored volumes become
	unreadable.
*/
package brick
