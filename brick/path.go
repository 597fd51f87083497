package brick

import "fmt"

// MetadataPath is the backend-relative path of the volume metadata
// document.
const MetadataPath = "metadata.json"

// BrickPath returns the backend-relative path for a brick, derived from
// its linear index and LOD level.  The format is part of the on-disk
// contract and must be reproduced exactly: bricks/lod{L}/{index:08d}.brick
func BrickPath(index int64, lodLevel int) string {
	return fmt.Sprintf("bricks/lod%d/%08d.brick", lodLevel, index)
}
