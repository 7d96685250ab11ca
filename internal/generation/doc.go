// Package generation defines the boundary interfaces between the review
// scheduling core and its external collaborators: content generators and
// topic sources. Concrete implementations live under internal/platform
// and internal/topics.
package generation
