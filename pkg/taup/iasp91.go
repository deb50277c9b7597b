package taup

// Coarse iasp91 travel-time grids, 10-degree distance step, source depths
// 0/100/300/700 km. Values are seconds; derived from the published iasp91
// tables, adequate for windowing and sorting rather than picking.

var iasp91Distances = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
var iasp91Depths = []float64{0, 100, 300, 700}

var iasp91P = [][]float64{
	{0, 149.6, 271.3, 372.4, 458.1, 533.4, 600.6, 660.2, 712.6, 757.8, 795.8},
	{13.8, 136.8, 258.6, 360.0, 445.9, 521.4, 588.8, 648.6, 701.2, 746.6, 784.7},
	{37.5, 115.9, 237.5, 338.6, 424.4, 500.0, 567.4, 627.2, 680.0, 725.6, 763.9},
	{79.8, 77.0, 198.7, 299.9, 385.6, 461.0, 528.2, 588.0, 640.3, 685.5, 723.4},
}

var iasp91S = [][]float64{
	{0, 271.1, 489.4, 672.2, 828.0, 965.7, 1085.8, 1193.2, 1287.3, 1368.3, 1437.7},
	{24.5, 247.3, 465.8, 648.7, 804.8, 942.6, 1062.9, 1170.4, 1264.6, 1345.7, 1415.2},
	{68.1, 210.4, 428.6, 611.5, 767.5, 905.3, 1025.5, 1133.1, 1227.3, 1308.4, 1377.9},
	{144.5, 140.6, 358.7, 541.6, 697.5, 835.2, 955.4, 1063.0, 1157.2, 1238.3, 1307.8},
}

var iasp91Layers = []velocityLayer{
	{0, 5.80, 3.36},
	{20, 6.50, 3.75},
	{35, 8.04, 4.47},
	{120, 8.30, 4.48},
	{210, 8.70, 4.73},
	{410, 9.36, 5.07},
	{660, 10.75, 5.95},
}

func newIASP91() *TableModel {
	return &TableModel{
		name: "iasp91",
		phases: map[string]*phaseTable{
			"P": {distances: iasp91Distances, depths: iasp91Depths, times: iasp91P},
			"S": {distances: iasp91Distances, depths: iasp91Depths, times: iasp91S},
		},
		layers: iasp91Layers,
	}
}
