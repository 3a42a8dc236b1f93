package ibl

// these functions are only exported when running tests

var RadicalInverseVdC = radicalInverseVdC
var GenerateHammersleySequence = generateHammersleySequence
var CalcCubeMapPixels = calcCubeMapPixels
var DirectionToFace = directionToFace
